package models

// AssetDescriptor is one tracked asset of the registry.
type AssetDescriptor struct {
	ProviderID string `yaml:"id" json:"id" validate:"required"`
	Symbol     string `yaml:"symbol" json:"symbol" validate:"required"`
	Category   string `yaml:"category" json:"category"`
	Group      string `yaml:"group" json:"group" validate:"required"`
	// FallbackID is fetched in place of ProviderID when the primary id fails.
	// The result keeps Symbol.
	FallbackID string `yaml:"fallback_id,omitempty" json:"fallback_id,omitempty"`
}

// Asset groups.
const (
	GroupInfra    = "infra"
	GroupDeFi     = "defi"
	GroupConsumer = "consumer"
	GroupMemes    = "memes"
)

// Dominance pseudo-series.
const (
	DomSymbol   = "USDT.D"
	DomCategory = "USDT dominance (USDT / sum(coins)) — indexed"
	DomGroup    = "metric"
	// DomBase is the asset whose share of the total is indexed.
	DomBase = "USDT"
)

// DefaultRegistry returns the built-in asset universe in display order.
func DefaultRegistry() []AssetDescriptor {
	return []AssetDescriptor{
		{ProviderID: "bitcoin", Symbol: "BTC", Category: "Store of Value / Base asset", Group: GroupInfra},
		{ProviderID: "ethereum", Symbol: "ETH", Category: "Layer 1 (L1)", Group: GroupInfra},
		{ProviderID: "binancecoin", Symbol: "BNB", Category: "CEX token / exchange ecosystem", Group: GroupInfra},
		{ProviderID: "arbitrum", Symbol: "ARB", Category: "Layer 2 (L2)", Group: GroupInfra},
		{ProviderID: "cosmos", Symbol: "ATOM", Category: "Layer 0 (L0)", Group: GroupInfra},
		{ProviderID: "avalanche-2", Symbol: "AVAX", Category: "Appchains / Subnets", Group: GroupInfra},
		{ProviderID: "wormhole", Symbol: "W", Category: "Interoperability / Bridges", Group: GroupInfra},
		{ProviderID: "chainlink", Symbol: "LINK", Category: "Oracles", Group: GroupInfra},
		{ProviderID: "ankr", Symbol: "ANKR", Category: "RPC / Node infrastructure", Group: GroupInfra},
		{ProviderID: "celestia", Symbol: "TIA", Category: "Modular / Data Availability", Group: GroupInfra},

		{ProviderID: "uniswap", Symbol: "UNI", Category: "DEXs", Group: GroupDeFi},
		{ProviderID: "1inch", Symbol: "1INCH", Category: "Aggregators", Group: GroupDeFi},
		{ProviderID: "aave", Symbol: "AAVE", Category: "Lending / Borrowing", Group: GroupDeFi},
		{ProviderID: "tether", Symbol: "USDT", Category: "Stablecoins", Group: GroupDeFi},
		{ProviderID: "dydx", Symbol: "DYDX", Category: "Derivatives", Group: GroupDeFi},
		{ProviderID: "lido-dao", Symbol: "LDO", Category: "Liquid Staking (LSD/LRT)", Group: GroupDeFi},
		{ProviderID: "yearn-finance", Symbol: "YFI", Category: "Yield / Vaults", Group: GroupDeFi},
		{ProviderID: "sky", Symbol: "SKY", Category: "CDPs (Maker → Sky)", Group: GroupDeFi, FallbackID: "maker"},
		{ProviderID: "ondo-finance", Symbol: "ONDO", Category: "RWA", Group: GroupDeFi},

		{ProviderID: "apecoin", Symbol: "APE", Category: "NFTs (collectibles / art)", Group: GroupConsumer},
		{ProviderID: "blur", Symbol: "BLUR", Category: "NFT marketplaces", Group: GroupConsumer},
		{ProviderID: "immutable-x", Symbol: "IMX", Category: "Gaming NFTs / Game assets", Group: GroupConsumer},
		{ProviderID: "decentraland", Symbol: "MANA", Category: "Metaverse / virtual worlds", Group: GroupConsumer},
		{ProviderID: "cyberconnect", Symbol: "CYBER", Category: "SocialFi", Group: GroupConsumer},
		{ProviderID: "chiliz", Symbol: "CHZ", Category: "Fan tokens", Group: GroupConsumer},

		{ProviderID: "dogecoin", Symbol: "DOGE", Category: "Memecoins", Group: GroupMemes},
		{ProviderID: "fartcoin", Symbol: "FART", Category: "Memecoins (Fartcoin)", Group: GroupMemes},
	}
}

// Meta is the display metadata of a symbol.
type Meta struct {
	Category string `json:"category"`
	Group    string `json:"group"`
}
