// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/agency-backend/internal/domain/catalog"
)

// Status represents the order status. An order starts life as the user's
// cart and is advanced by checkout and gateway callbacks.
type Status string

const (
	StatusCart                  Status = "cart"
	StatusPending               Status = "pending"
	StatusPendingIyzicoApproval Status = "pending_iyzico_approval"
	StatusPendingPayTRApproval  Status = "pending_paytr_approval"
	StatusPendingStripeApproval Status = "pending_stripe_approval"
	StatusCompleted             Status = "completed"
	StatusPaymentFailed         Status = "payment_failed"
	StatusCancelled             Status = "cancelled"
)

// PaymentMethod represents how the customer chose to pay
type PaymentMethod string

const (
	MethodIyzico       PaymentMethod = "iyzico"
	MethodPayTR        PaymentMethod = "paytr"
	MethodStripe       PaymentMethod = "stripe"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCash         PaymentMethod = "cash"
)

// Order represents the unified cart/order entity. A single `cart`-status
// order exists per user (partial unique index, see migrations); checkout
// stamps the billing snapshot and gateway callbacks drive it to a terminal
// state.
type Order struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	Status Status `gorm:"not null;size:30;default:'cart';index" json:"status"`

	Currency      string        `gorm:"size:3;default:'TRY'" json:"currency"`
	PaymentMethod PaymentMethod `gorm:"size:20" json:"payment_method"`

	// Discount
	DiscountCodeID *uint `gorm:"index" json:"discount_code_id"`
	DiscountAmount int64 `gorm:"not null;default:0" json:"discount_amount"` // In minor units

	// Billing snapshot, captured at checkout time and kept independent of
	// later profile edits.
	BillingName           string `gorm:"size:100" json:"billing_name"`
	BillingEmail          string `gorm:"size:255" json:"billing_email"`
	BillingPhone          string `gorm:"size:20" json:"billing_phone"`
	BillingIdentityNumber string `gorm:"size:11" json:"-"`
	BillingAddress        string `gorm:"type:text" json:"billing_address"`
	BillingCity           string `gorm:"size:50" json:"billing_city"`
	BillingPostalCode     string `gorm:"size:10" json:"billing_postal_code"`

	// Gateway correlation
	ConversationID  string `gorm:"size:64;index" json:"conversation_id"`
	IyzicoPaymentID string `gorm:"size:100;index" json:"iyzico_payment_id"`
	MerchantOID     string `gorm:"column:merchant_oid;size:64;index" json:"merchant_oid"`
	StripeSessionID string `gorm:"size:255;index" json:"stripe_session_id"`
	PaymentRef      string `gorm:"size:255" json:"payment_ref"`
	PaymentStatus   string `gorm:"size:50" json:"payment_status"`
	RawResponse     string `gorm:"type:text" json:"-"`
	ErrorMessage    string `gorm:"type:text" json:"error_message"`

	PaymentDate *time.Time     `json:"payment_date"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// OrderItem represents a line item within an order. Price is a snapshot
// taken when the item was added; later catalog price changes never affect
// existing orders.
type OrderItem struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	OrderID         uint      `gorm:"not null;index" json:"order_id"`
	PortfolioItemID uint      `gorm:"not null;index" json:"portfolio_item_id"`
	Title           string    `gorm:"not null;size:255" json:"title"`
	Price           int64     `gorm:"not null" json:"price"` // Per unit, in minor units
	Quantity        int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	PortfolioItem *catalog.PortfolioItem `gorm:"foreignKey:PortfolioItemID" json:"portfolio_item,omitempty"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }

// Cost returns price * quantity for the line item
func (i *OrderItem) Cost() int64 {
	return i.Price * int64(i.Quantity)
}

// SubtotalCost returns the sum of all line item costs
func (o *Order) SubtotalCost() int64 {
	var subtotal int64
	for i := range o.Items {
		subtotal += o.Items[i].Cost()
	}
	return subtotal
}

// TotalCost returns subtotal minus discount, floored at zero
func (o *Order) TotalCost() int64 {
	total := o.SubtotalCost() - o.DiscountAmount
	if total < 0 {
		return 0
	}
	return total
}

// IsTerminal reports whether the order reached a final state
func (o *Order) IsTerminal() bool {
	return o.Status == StatusCompleted ||
		o.Status == StatusPaymentFailed ||
		o.Status == StatusCancelled
}

// FormatAmount renders a minor-unit amount as a two-decimal string,
// e.g. 8500 -> "85.00"
func FormatAmount(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}
