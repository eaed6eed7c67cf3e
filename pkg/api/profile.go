package api

// ProfileResponse представляет профиль текущего клиента (GET /clients/mypage)
type ProfileResponse struct {
	ClientNickname string `json:"clientNickname"` // отображаемое имя
	ClientEmail    string `json:"clientEmail"`    // email клиента
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
