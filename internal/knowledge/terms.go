package knowledge

// Financial term complexity lists. A term matching the beginner list
// scores 1, intermediate 2, advanced 3; matching is substring in either
// direction, beginner list checked first.
var (
	beginnerTerms = []string{
		"stock", "share", "buy", "sell", "profit", "loss", "dividend", "company",
		"investment", "portfolio", "broker", "market", "price", "trading",
		"nasdaq", "dow jones", "sp500", "s&p 500", "bull market", "bear market",
	}

	intermediateTerms = []string{
		"pe ratio", "earnings", "revenue", "market cap", "volume", "support",
		"resistance", "trend", "technical analysis", "fundamental analysis",
		"rsi", "moving average", "macd", "candlestick", "ema", "bollinger bands",
		"eps", "roe", "debt to equity", "price to book", "quarterly earnings",
	}

	advancedTerms = []string{
		"vix", "volatility", "beta", "alpha", "sharpe ratio", "options", "derivatives",
		"futures", "margin", "leverage", "arbitrage", "hedge", "correlation",
		"standard deviation", "fibonacci", "stochastic", "ichimoku", "elliott wave",
		"black scholes", "greeks", "delta", "gamma", "theta", "vega", "implied volatility",
	}

	// complexityIndicators push unmatched terms toward the
	// intermediate-advanced fallback score
	complexityIndicators = []string{
		"ratio", "analysis", "strategy", "model", "theory", "algorithm",
		"derivative", "quantitative", "statistical", "mathematical",
	}
)

// contextMap maps term stems to contextually related concepts
var contextMap = map[string][]string{
	"stock":       {"equity", "shares", "market cap", "dividend"},
	"option":      {"derivative", "call", "put", "strike price"},
	"technical":   {"chart", "indicator", "trend", "support"},
	"fundamental": {"earnings", "revenue", "valuation", "growth"},
	"risk":        {"volatility", "beta", "correlation", "hedge"},
	"portfolio":   {"diversification", "allocation", "rebalancing", "return"},
}

// localDefinitions is the canned definition set used when the instant
// answer lookup is unavailable
var localDefinitions = map[string]struct {
	Definition string
	Related    []string
}{
	"pe ratio": {
		Definition: "Price-to-Earnings ratio measures company valuation relative to earnings",
		Related:    []string{"earnings", "valuation", "financial metrics", "stock analysis"},
	},
	"volatility": {
		Definition: "Measure of price fluctuation in financial instruments over time",
		Related:    []string{"risk", "standard deviation", "VIX", "market uncertainty"},
	},
	"options": {
		Definition: "Financial derivatives giving the right to buy/sell assets at specific prices",
		Related:    []string{"derivatives", "calls", "puts", "strike price", "expiration"},
	},
	"dividend": {
		Definition: "Payment made by companies to shareholders from profits",
		Related:    []string{"yield", "payout ratio", "ex-dividend date", "income investing"},
	},
}

// suggestedContent lists learning material per tier
var suggestedContent = map[string][]string{
	"beginner": {
		"Basic investment principles",
		"How stock markets work",
		"Understanding dividends",
		"Investment terminology",
	},
	"intermediate": {
		"Technical indicators",
		"Financial statement analysis",
		"Portfolio diversification",
		"Risk management strategies",
	},
	"advanced": {
		"Options strategies",
		"Quantitative models",
		"Risk metrics",
		"Advanced portfolio theory",
	},
}

// baseRecommendations per assessed tier
var baseRecommendations = map[string][]string{
	"beginner": {
		"Learn about different types of investments",
		"Understand risk vs return",
		"Start with index funds or ETFs",
	},
	"intermediate": {
		"Study financial statement analysis",
		"Learn about portfolio diversification",
		"Explore different asset classes",
	},
	"advanced": {
		"Research options strategies",
		"Study quantitative analysis methods",
		"Explore alternative investments",
	},
}
