package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// usecaseが返すエラーの種類。errors.Isで比較できる。
var (
	//401 ユーザーが特定できない
	ErrNotAuthenticated = &HTTPError{Status: http.StatusUnauthorized, Message: "unauthorized"}
	//400 数量が1未満
	ErrInvalidQuantity = &HTTPError{Status: http.StatusBadRequest, Message: "invalid quantity"}
	//404 商品が存在しない
	ErrProductNotFound = &HTTPError{Status: http.StatusNotFound, Message: "product not found"}
	//409 カートが空
	ErrEmptyCart = &HTTPError{Status: http.StatusConflict, Message: "cart empty"}
	//503 注文の確定に失敗（カートはそのまま。再試行してよい）
	ErrCheckoutFailed = &HTTPError{Status: http.StatusServiceUnavailable, Message: "checkout failed, please retry"}
	//404 注文が存在しない（他人の注文も含む）
	ErrOrderNotFound = &HTTPError{Status: http.StatusNotFound, Message: "order not found"}
	//500
	ErrInternal = &HTTPError{Status: http.StatusInternalServerError, Message: "db error"}
)

// クライアントに再試行を促してよいエラーか
func IsRetryable(err error) bool {
	return errors.Is(err, ErrCheckoutFailed)
}
