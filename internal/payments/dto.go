package payments

// CheckoutPreference is returned to the frontend so it can redirect the
// shopper to the gateway's checkout.
type CheckoutPreference struct {
	PreferenceID     string `json:"preference_id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point,omitempty"`
	OrderNumber      string `json:"order_number"`
}

// Status summarizes where an order stands with the gateway.
type Status struct {
	OrderNumber   string  `json:"order_number"`
	OrderStatus   string  `json:"order_status"`
	PaymentID     *string `json:"payment_id,omitempty"`
	PaymentStatus *string `json:"payment_status,omitempty"`
}
