package usage

import "github.com/shopspring/decimal"

// 每百萬 token 的美元價格
var (
	PromptRatePerMillion   = decimal.RequireFromString("0.075")
	ResponseRatePerMillion = decimal.RequireFromString("0.30")

	million = decimal.NewFromInt(1_000_000)
)

// CostPrecision 費用保存到小數點後六位
const CostPrecision = 6

// Cost 計算一次生成的費用（美元），四捨五入到六位小數
func Cost(promptTokens, responseTokens int) decimal.Decimal {
	prompt := decimal.NewFromInt(int64(promptTokens)).Mul(PromptRatePerMillion).Div(million)
	response := decimal.NewFromInt(int64(responseTokens)).Mul(ResponseRatePerMillion).Div(million)
	return prompt.Add(response).Round(CostPrecision)
}

// ToMicros 把六位小數的金額轉成整數微美元
func ToMicros(d decimal.Decimal) int64 {
	return d.Shift(CostPrecision).Round(0).IntPart()
}

// FromMicros 把整數微美元轉回金額
func FromMicros(micros int64) decimal.Decimal {
	return decimal.New(micros, -CostPrecision)
}
