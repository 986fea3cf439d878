// Package middleware 提供了 HTTP 請求處理的中間件。
//
// AuthMiddleware 要求有效的 Bearer token；OptionalAuth 用於聊天連線，
// 沒有 token 時以匿名身分加入房間。兩者都把用戶名稱寫入 context，
// 請求日誌會一併記錄。
package middleware
