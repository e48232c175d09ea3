package server

// task is one command line read off a client socket, queued for a
// worker to execute and reply to. It is the Go equivalent of the C
// reactor's Task struct (original_source/src/thread_pool.c): client_fd
// and command become ClientFD and Line.
type task struct {
	ClientFD int
	ConnID   string
	Line     string
}
