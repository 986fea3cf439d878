package logger

const (
	// 請求
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// 使用者（與 middleware 的 context key 相同）
	FieldUsername = "username"

	FieldService = "service"

	// 聊天室
	FieldRoom     = "room"
	FieldClientID = "client_id"
	FieldState    = "state"
	FieldCost     = "cost"
)
