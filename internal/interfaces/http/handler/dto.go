package handler

// StockQuery asks whether a quantity can be bought
type StockQuery struct {
	Quantity int `form:"quantity" binding:"required,gte=1,lte=2147483647"`
}

// AdjustStockRequest changes one stock counter of an item
type AdjustStockRequest struct {
	Counter   string `json:"counter" binding:"required,oneof=available actual"`
	Direction string `json:"direction" binding:"required,oneof=increase decrease"`
	Quantity  int    `json:"quantity" binding:"required,gte=1,lte=2147483647"`
}

// AdjustStockResponse carries the counter value after an adjustment
type AdjustStockResponse struct {
	SKU     string `json:"sku"`
	Counter string `json:"counter"`
	Value   int    `json:"value"`
}

// ItemStatusRequest switches the sale flags of an item; at least one is required
type ItemStatusRequest struct {
	Active     *bool `json:"active" binding:"required_without=Suppliable"`
	Suppliable *bool `json:"suppliable" binding:"required_without=Active"`
}

// ProductStatusRequest activates or deactivates a product and its items
type ProductStatusRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// AvailabilityResponse answers an availability or stock check
type AvailabilityResponse struct {
	SKU       string `json:"sku"`
	Available bool   `json:"available"`
	Quantity  int    `json:"quantity,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// AddLineRequest adds an item to a cart
type AddLineRequest struct {
	SKU      string `json:"sku" binding:"required,sku"`
	Quantity int    `json:"quantity" binding:"required,gte=1,lte=2147483647"`
}

// AdjustLineRequest moves a line quantity by +1 or -1
type AdjustLineRequest struct {
	Increment int `json:"increment" binding:"required,oneof=1 -1"`
}

// SetQuantitiesRequest replaces the quantities of existing lines keyed by SKU
type SetQuantitiesRequest struct {
	Quantities map[string]int `json:"quantities" binding:"required,min=1,dive,keys,sku,endkeys,gte=1,lte=2147483647"`
}

// CheckoutRequest turns a cart into an order
type CheckoutRequest struct {
	AddressID      string  `json:"address_id" binding:"required,uuid"`
	Footnote       string  `json:"footnote" binding:"max=500"`
	TransactionRef string  `json:"transaction_ref" binding:"required,max=100"`
	VoucherID      *string `json:"voucher_id" binding:"omitempty,uuid"`
	LogisticID     *string `json:"logistic_id" binding:"omitempty,uuid"`
}

// PaymentCallbackRequest is the notification sent by the payment gateway
type PaymentCallbackRequest struct {
	TransactionRef string `json:"transaction_ref" binding:"required,max=100"`
	Status         string `json:"status" binding:"required"`
}

// AdvanceStatusRequest moves a paid order through fulfillment
type AdvanceStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=shipped delivered completed expiring"`
}

// RefundRequest carries the refund reason
type RefundRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// OrderLookupQuery finds an order by its payment reference
type OrderLookupQuery struct {
	TransactionRef string `form:"transaction_ref" binding:"required,max=100"`
}
