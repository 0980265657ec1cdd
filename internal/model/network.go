// Package model defines value types shared by the chain spend components.
package model

// Network names the Bitcoin network a run targets.
type Network string

var (
	Regtest Network = "regtest"
	Testnet Network = "testnet"
	Signet  Network = "signet"
	Mainnet Network = "mainnet"
)
