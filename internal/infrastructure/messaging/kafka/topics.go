package kafka

// Topic names for ledger events.
const (
	TopicAccountCreated        = "ledger.accounts.created"
	TopicTransactionDeposit    = "ledger.transactions.deposit"
	TopicTransactionWithdrawal = "ledger.transactions.withdrawal"
	TopicTransactionTransfer   = "ledger.transactions.transfer"
)

// GetAllTopics returns the list of all topics this service publishes to.
func GetAllTopics() []string {
	return []string{
		TopicAccountCreated,
		TopicTransactionDeposit,
		TopicTransactionWithdrawal,
		TopicTransactionTransfer,
	}
}
