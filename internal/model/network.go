package model

// Network selects which chain the ingestor follows.
type Network string

var (
	Mainnet  Network = "mainnet"
	Stagenet Network = "stagenet"
	Testnet  Network = "testnet"
)
