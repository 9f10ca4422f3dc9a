package checkout

import "errors"

var (
	ErrInvalidTransition  = errors.New("action not allowed in current checkout state")
	ErrSubmissionInFlight = errors.New("an order submission is already in progress")
	ErrCartEmpty          = errors.New("cart is empty")
)

// FailureMessage is shown to the shopper when an order could not be saved.
const FailureMessage = "Có lỗi xảy ra khi đặt hàng. Vui lòng thử lại sau."
