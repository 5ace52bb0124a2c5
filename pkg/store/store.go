package store

import (
	"paperdesk/pkg/domain"
)

// Store defines persistence operations for users, orders, payments,
// assignments, and reviews.
type Store interface {
	// users
	SaveUser(domain.User) error
	HasUserEmail(email string) (bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)
	ListUsers() ([]domain.User, error)
	UpdateUser(domain.User) error
	DeleteUser(id string) error

	// orders
	SaveOrder(domain.Order) error
	GetOrder(id string) (domain.Order, bool, error)
	// GetOrderForStudent scopes the lookup by both id and owner so a miss
	// cannot reveal whether the order exists under another student.
	GetOrderForStudent(id, studentID string) (domain.Order, bool, error)
	ListOrdersByStudent(studentID string) ([]domain.Order, error)
	UpdateOrder(domain.Order) error
	SetOrderStatus(id string, status domain.OrderStatus) error
	DeleteOrder(id string) error

	// uploaded files
	AddUploadedFile(domain.UploadedFile) error
	ListFilesByOrder(orderID string) ([]domain.UploadedFile, error)

	// payments
	SavePayment(payment domain.Payment, gatewayPayload []byte) error
	GetPayment(id string) (domain.Payment, bool, error)
	GetPaymentByTransactionID(transactionID string) (domain.Payment, bool, error)
	ListPaymentsByOrder(orderID string) ([]domain.Payment, error)
	ListPaymentsByStudent(studentID string) ([]domain.Payment, error)
	UpdatePayment(domain.Payment) error
	DeletePayment(id string) error

	// assignments
	SaveAssignment(domain.Assignment) error
	GetAssignment(id string) (domain.Assignment, bool, error)
	ListAssignmentsByOrder(orderID string) ([]domain.Assignment, error)
	ListAssignmentsByWriter(writerID string) ([]domain.Assignment, error)
	UpdateAssignment(domain.Assignment) error
	DeleteAssignment(id string) error

	// reviews
	SaveReview(domain.Review) error
	GetReview(id string) (domain.Review, bool, error)
	ListReviewsByUser(userID string) ([]domain.Review, error)
	UpdateReview(domain.Review) error
	DeleteReview(id string) error
}
