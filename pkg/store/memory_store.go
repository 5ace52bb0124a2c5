package store

import (
	"sort"
	"sync"

	"paperdesk/pkg/domain"
)

// MemoryStore keeps all entities in process memory. Used by tests and
// local development.
type MemoryStore struct {
	mu          sync.Mutex
	users       map[string]domain.User
	orders      map[string]domain.Order
	files       map[string][]domain.UploadedFile // orderID -> files
	payments    map[string]domain.Payment
	assignments map[string]domain.Assignment
	reviews     map[string]domain.Review
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]domain.User),
		orders:      make(map[string]domain.Order),
		files:       make(map[string][]domain.UploadedFile),
		payments:    make(map[string]domain.Payment),
		assignments: make(map[string]domain.Assignment),
		reviews:     make(map[string]domain.Review),
	}
}

func (s *MemoryStore) SaveUser(u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *MemoryStore) HasUserEmail(email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return domain.User{}, false, nil
}

func (s *MemoryStore) GetUserByID(id string) (domain.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok, nil
}

func (s *MemoryStore) ListUsers() ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		res = append(res, u)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (s *MemoryStore) UpdateUser(u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.users[u.ID]; ok {
		u.PasswordHash = existing.PasswordHash
		u.CreatedAt = existing.CreatedAt
		s.users[u.ID] = u
	}
	return nil
}

func (s *MemoryStore) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

func (s *MemoryStore) SaveOrder(o domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	files := o.Files
	o.Files = nil
	s.orders[o.ID] = o
	if len(files) > 0 {
		s.files[o.ID] = append(s.files[o.ID], files...)
	}
	return nil
}

func (s *MemoryStore) GetOrder(id string) (domain.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, false, nil
	}
	o.Files = append([]domain.UploadedFile(nil), s.files[id]...)
	return o, true, nil
}

func (s *MemoryStore) GetOrderForStudent(id, studentID string) (domain.Order, bool, error) {
	o, ok, err := s.GetOrder(id)
	if err != nil || !ok || o.StudentID != studentID {
		return domain.Order{}, false, err
	}
	return o, true, nil
}

func (s *MemoryStore) ListOrdersByStudent(studentID string) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]domain.Order, 0)
	for id, o := range s.orders {
		if o.StudentID == studentID {
			o.Files = append([]domain.UploadedFile(nil), s.files[id]...)
			res = append(res, o)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (s *MemoryStore) UpdateOrder(o domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.orders[o.ID]; ok {
		o.StudentID = existing.StudentID
		o.CreatedAt = existing.CreatedAt
		o.Files = nil
		s.orders[o.ID] = o
	}
	return nil
}

func (s *MemoryStore) SetOrderStatus(id string, status domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[id]; ok {
		o.Status = status
		s.orders[id] = o
	}
	return nil
}

func (s *MemoryStore) DeleteOrder(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders, id)
	delete(s.files, id)
	return nil
}

func (s *MemoryStore) AddUploadedFile(f domain.UploadedFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[f.OrderID] = append(s.files[f.OrderID], f)
	return nil
}

func (s *MemoryStore) ListFilesByOrder(orderID string) ([]domain.UploadedFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.UploadedFile(nil), s.files[orderID]...), nil
}

func (s *MemoryStore) SavePayment(p domain.Payment, _ []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments[p.ID] = p
	return nil
}

func (s *MemoryStore) GetPayment(id string) (domain.Payment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	return p, ok, nil
}

func (s *MemoryStore) GetPaymentByTransactionID(transactionID string) (domain.Payment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payments {
		if p.TransactionID != "" && p.TransactionID == transactionID {
			return p, true, nil
		}
	}
	return domain.Payment{}, false, nil
}

func (s *MemoryStore) ListPaymentsByOrder(orderID string) ([]domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]domain.Payment, 0)
	for _, p := range s.payments {
		if p.OrderID == orderID {
			res = append(res, p)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (s *MemoryStore) ListPaymentsByStudent(studentID string) ([]domain.Payment, error) {
	s.mu.Lock()
	owned := make(map[string]struct{})
	for id, o := range s.orders {
		if o.StudentID == studentID {
			owned[id] = struct{}{}
		}
	}
	res := make([]domain.Payment, 0)
	for _, p := range s.payments {
		if _, ok := owned[p.OrderID]; ok {
			res = append(res, p)
		}
	}
	s.mu.Unlock()
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (s *MemoryStore) UpdatePayment(p domain.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.payments[p.ID]; ok {
		p.OrderID = existing.OrderID
		p.CreatedAt = existing.CreatedAt
		if p.TransactionID == "" {
			p.TransactionID = existing.TransactionID
		}
		s.payments[p.ID] = p
	}
	return nil
}

func (s *MemoryStore) DeletePayment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.payments, id)
	return nil
}

func (s *MemoryStore) SaveAssignment(a domain.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[a.ID] = a
	return nil
}

func (s *MemoryStore) GetAssignment(id string) (domain.Assignment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assignments[id]
	return a, ok, nil
}

func (s *MemoryStore) ListAssignmentsByOrder(orderID string) ([]domain.Assignment, error) {
	return s.listAssignments(func(a domain.Assignment) bool { return a.OrderID == orderID })
}

func (s *MemoryStore) ListAssignmentsByWriter(writerID string) ([]domain.Assignment, error) {
	return s.listAssignments(func(a domain.Assignment) bool { return a.WriterID == writerID })
}

func (s *MemoryStore) listAssignments(match func(domain.Assignment) bool) ([]domain.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]domain.Assignment, 0)
	for _, a := range s.assignments {
		if match(a) {
			res = append(res, a)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (s *MemoryStore) UpdateAssignment(a domain.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.assignments[a.ID]; ok {
		a.OrderID = existing.OrderID
		a.WriterID = existing.WriterID
		a.CreatedAt = existing.CreatedAt
		s.assignments[a.ID] = a
	}
	return nil
}

func (s *MemoryStore) DeleteAssignment(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assignments, id)
	return nil
}

func (s *MemoryStore) SaveReview(r domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews[r.ID] = r
	return nil
}

func (s *MemoryStore) GetReview(id string) (domain.Review, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	return r, ok, nil
}

func (s *MemoryStore) ListReviewsByUser(userID string) ([]domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]domain.Review, 0)
	for _, r := range s.reviews {
		if r.QAID == userID || r.WriterID == userID {
			res = append(res, r)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (s *MemoryStore) UpdateReview(r domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.reviews[r.ID]; ok {
		r.OrderID = existing.OrderID
		r.QAID = existing.QAID
		r.WriterID = existing.WriterID
		r.CreatedAt = existing.CreatedAt
		s.reviews[r.ID] = r
	}
	return nil
}

func (s *MemoryStore) DeleteReview(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reviews, id)
	return nil
}
