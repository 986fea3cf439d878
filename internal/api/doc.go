// Package api 處理 HTTP 請求路由和處理。
//
// 公開路由負責註冊、登入與健康檢查；房間歷史與用量查詢需要登入；
// /ws/chat/:room 升級為 WebSocket，未帶 token 時以匿名身分加入。
package api
