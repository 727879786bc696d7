package types

// Standard table names for Store.GetTable.
const (
	AccountsTable   = "accounts"
	PortfoliosTable = "portfolios"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	AccountsTable,
	PortfoliosTable,
}
