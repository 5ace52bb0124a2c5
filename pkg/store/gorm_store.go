package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
	"paperdesk/pkg/domain"
)

const migrateLockID int64 = 52815281

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations under an advisory lock.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&UserModel{}, &OrderModel{}, &UploadedFileModel{},
			&PaymentModel{}, &AssignmentModel{}, &ReviewModel{},
		); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		if err := tx.Exec(`
			DO $$
			BEGIN
				IF NOT EXISTS (
					SELECT 1 FROM information_schema.table_constraints
					WHERE table_schema = 'public'
					AND table_name = 'uploaded_file_models'
					AND constraint_name = 'uploaded_file_models_order_id_fkey'
				) THEN
					ALTER TABLE uploaded_file_models
					ADD CONSTRAINT uploaded_file_models_order_id_fkey
					FOREIGN KEY (order_id) REFERENCES order_models(id) ON DELETE CASCADE;
				END IF;
				IF NOT EXISTS (
					SELECT 1 FROM information_schema.table_constraints
					WHERE table_schema = 'public'
					AND table_name = 'payment_models'
					AND constraint_name = 'payment_models_order_id_fkey'
				) THEN
					ALTER TABLE payment_models
					ADD CONSTRAINT payment_models_order_id_fkey
					FOREIGN KEY (order_id) REFERENCES order_models(id) ON DELETE CASCADE;
				END IF;
			END $$;
		`).Error; err != nil {
			return fmt.Errorf("ensure order foreign keys: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// SaveUser registers or updates a user.
func (s *GormStore) SaveUser(u domain.User) error {
	model := userToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "password_hash", "first_name", "last_name", "role", "updated_at"}),
	}).Create(&model).Error
}

// HasUserEmail checks if email exists.
func (s *GormStore) HasUserEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetUserByEmail looks up a user by email.
func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByID returns a user by ID.
func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return userFromModel(model), true, nil
}

// ListUsers returns all users ordered by created_at.
func (s *GormStore) ListUsers() ([]domain.User, error) {
	var models []UserModel
	if err := s.db.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.User, 0, len(models))
	for _, m := range models {
		res = append(res, userFromModel(m))
	}
	return res, nil
}

// UpdateUser overwrites mutable user columns.
func (s *GormStore) UpdateUser(u domain.User) error {
	return s.db.Model(&UserModel{}).
		Where("id = ?", u.ID).
		Updates(map[string]any{
			"email":      u.Email,
			"first_name": u.FirstName,
			"last_name":  u.LastName,
			"role":       string(u.Role),
			"updated_at": time.Now().UTC(),
		}).Error
}

// DeleteUser removes a user row.
func (s *GormStore) DeleteUser(id string) error {
	return s.db.Delete(&UserModel{}, "id = ?", id).Error
}

// SaveOrder stores an order together with its uploaded-file children in
// a single transaction.
func (s *GormStore) SaveOrder(o domain.Order) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		model := orderToModel(o)
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"paper_type", "number_of_pages", "due_date", "total_amount", "deposit_amount", "status", "updated_at"}),
		}).Create(&model).Error; err != nil {
			return err
		}
		for _, f := range o.Files {
			fm := fileToModel(f)
			if err := tx.Create(&fm).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetOrder retrieves an order with its files.
func (s *GormStore) GetOrder(id string) (domain.Order, bool, error) {
	var model OrderModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Order{}, false, nil
		}
		return domain.Order{}, false, err
	}
	return s.orderWithFiles(model)
}

// GetOrderForStudent retrieves an order scoped by id AND owner.
func (s *GormStore) GetOrderForStudent(id, studentID string) (domain.Order, bool, error) {
	var model OrderModel
	if err := s.db.Where("id = ? AND student_id = ?", id, studentID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Order{}, false, nil
		}
		return domain.Order{}, false, err
	}
	return s.orderWithFiles(model)
}

// ListOrdersByStudent returns orders for a student ordered by created_at.
func (s *GormStore) ListOrdersByStudent(studentID string) ([]domain.Order, error) {
	var models []OrderModel
	if err := s.db.Where("student_id = ?", studentID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Order, 0, len(models))
	for _, m := range models {
		o, _, err := s.orderWithFiles(m)
		if err != nil {
			return nil, err
		}
		res = append(res, o)
	}
	return res, nil
}

// UpdateOrder overwrites mutable order columns.
func (s *GormStore) UpdateOrder(o domain.Order) error {
	return s.db.Model(&OrderModel{}).
		Where("id = ?", o.ID).
		Updates(map[string]any{
			"paper_type":      o.PaperType,
			"number_of_pages": o.NumberOfPages,
			"due_date":        o.DueDate,
			"total_amount":    o.TotalAmount,
			"deposit_amount":  o.DepositAmount,
			"status":          string(o.Status),
			"updated_at":      time.Now().UTC(),
		}).Error
}

// SetOrderStatus updates only the order status.
func (s *GormStore) SetOrderStatus(id string, status domain.OrderStatus) error {
	return s.db.Model(&OrderModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		}).Error
}

// DeleteOrder removes an order; children cascade.
func (s *GormStore) DeleteOrder(id string) error {
	return s.db.Delete(&OrderModel{}, "id = ?", id).Error
}

// AddUploadedFile persists file metadata for an order.
func (s *GormStore) AddUploadedFile(f domain.UploadedFile) error {
	model := fileToModel(f)
	return s.db.Create(&model).Error
}

// ListFilesByOrder returns file metadata for an order.
func (s *GormStore) ListFilesByOrder(orderID string) ([]domain.UploadedFile, error) {
	var models []UploadedFileModel
	if err := s.db.Where("order_id = ?", orderID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.UploadedFile, 0, len(models))
	for _, m := range models {
		res = append(res, fileFromModel(m))
	}
	return res, nil
}

func (s *GormStore) orderWithFiles(model OrderModel) (domain.Order, bool, error) {
	order := orderFromModel(model)
	files, err := s.ListFilesByOrder(model.ID)
	if err != nil {
		return domain.Order{}, false, err
	}
	order.Files = files
	return order, true, nil
}

// SavePayment stores a payment; the raw gateway payload (when present)
// is kept alongside for reconciliation audits.
func (s *GormStore) SavePayment(p domain.Payment, gatewayPayload []byte) error {
	model := paymentToModel(p)
	if len(gatewayPayload) > 0 {
		model.GatewayPayload = datatypes.JSON(gatewayPayload)
	}
	return s.db.Create(&model).Error
}

// GetPayment retrieves a payment.
func (s *GormStore) GetPayment(id string) (domain.Payment, bool, error) {
	var model PaymentModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Payment{}, false, nil
		}
		return domain.Payment{}, false, err
	}
	return paymentFromModel(model), true, nil
}

// GetPaymentByTransactionID retrieves a payment by gateway transaction.
func (s *GormStore) GetPaymentByTransactionID(transactionID string) (domain.Payment, bool, error) {
	var model PaymentModel
	if err := s.db.Where("transaction_id = ?", transactionID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Payment{}, false, nil
		}
		return domain.Payment{}, false, err
	}
	return paymentFromModel(model), true, nil
}

// ListPaymentsByOrder returns payments for an order.
func (s *GormStore) ListPaymentsByOrder(orderID string) ([]domain.Payment, error) {
	var models []PaymentModel
	if err := s.db.Where("order_id = ?", orderID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return paymentsFromModels(models), nil
}

// ListPaymentsByStudent returns payments across every order the student owns.
func (s *GormStore) ListPaymentsByStudent(studentID string) ([]domain.Payment, error) {
	var models []PaymentModel
	if err := s.db.
		Joins("JOIN order_models ON order_models.id = payment_models.order_id").
		Where("order_models.student_id = ?", studentID).
		Order("payment_models.created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return paymentsFromModels(models), nil
}

// UpdatePayment overwrites mutable payment columns.
func (s *GormStore) UpdatePayment(p domain.Payment) error {
	updates := map[string]any{
		"amount":         p.Amount,
		"payment_status": string(p.PaymentStatus),
		"updated_at":     time.Now().UTC(),
	}
	if p.TransactionID != "" {
		updates["transaction_id"] = p.TransactionID
	}
	return s.db.Model(&PaymentModel{}).Where("id = ?", p.ID).Updates(updates).Error
}

// DeletePayment removes a payment row.
func (s *GormStore) DeletePayment(id string) error {
	return s.db.Delete(&PaymentModel{}, "id = ?", id).Error
}

// SaveAssignment stores an assignment.
func (s *GormStore) SaveAssignment(a domain.Assignment) error {
	model := assignmentToModel(a)
	return s.db.Create(&model).Error
}

// GetAssignment retrieves an assignment.
func (s *GormStore) GetAssignment(id string) (domain.Assignment, bool, error) {
	var model AssignmentModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Assignment{}, false, nil
		}
		return domain.Assignment{}, false, err
	}
	return assignmentFromModel(model), true, nil
}

// ListAssignmentsByOrder returns assignments for an order.
func (s *GormStore) ListAssignmentsByOrder(orderID string) ([]domain.Assignment, error) {
	return s.listAssignments("order_id = ?", orderID)
}

// ListAssignmentsByWriter returns assignments for a writer.
func (s *GormStore) ListAssignmentsByWriter(writerID string) ([]domain.Assignment, error) {
	return s.listAssignments("writer_id = ?", writerID)
}

func (s *GormStore) listAssignments(cond string, arg any) ([]domain.Assignment, error) {
	var models []AssignmentModel
	if err := s.db.Where(cond, arg).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Assignment, 0, len(models))
	for _, m := range models {
		res = append(res, assignmentFromModel(m))
	}
	return res, nil
}

// UpdateAssignment overwrites mutable assignment columns.
func (s *GormStore) UpdateAssignment(a domain.Assignment) error {
	return s.db.Model(&AssignmentModel{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"status":     string(a.Status),
			"updated_at": time.Now().UTC(),
		}).Error
}

// DeleteAssignment removes an assignment row.
func (s *GormStore) DeleteAssignment(id string) error {
	return s.db.Delete(&AssignmentModel{}, "id = ?", id).Error
}

// SaveReview stores a review.
func (s *GormStore) SaveReview(r domain.Review) error {
	model := reviewToModel(r)
	return s.db.Create(&model).Error
}

// GetReview retrieves a review.
func (s *GormStore) GetReview(id string) (domain.Review, bool, error) {
	var model ReviewModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Review{}, false, nil
		}
		return domain.Review{}, false, err
	}
	return reviewFromModel(model), true, nil
}

// ListReviewsByUser returns reviews where the user is either the QA
// author or the reviewed writer.
func (s *GormStore) ListReviewsByUser(userID string) ([]domain.Review, error) {
	var models []ReviewModel
	if err := s.db.
		Where("qa_id = ? OR writer_id = ?", userID, userID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Review, 0, len(models))
	for _, m := range models {
		res = append(res, reviewFromModel(m))
	}
	return res, nil
}

// UpdateReview overwrites mutable review columns.
func (s *GormStore) UpdateReview(r domain.Review) error {
	return s.db.Model(&ReviewModel{}).
		Where("id = ?", r.ID).
		Updates(map[string]any{
			"rating":     r.Rating,
			"comments":   r.Comments,
			"status":     r.Status,
			"updated_at": time.Now().UTC(),
		}).Error
}

// DeleteReview removes a review row.
func (s *GormStore) DeleteReview(id string) error {
	return s.db.Delete(&ReviewModel{}, "id = ?", id).Error
}

// model conversions

func userToModel(u domain.User) UserModel {
	return UserModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Role:         domain.UserRole(m.Role),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func orderToModel(o domain.Order) OrderModel {
	return OrderModel{
		ID:            o.ID,
		StudentID:     o.StudentID,
		PaperType:     o.PaperType,
		NumberOfPages: o.NumberOfPages,
		DueDate:       o.DueDate,
		TotalAmount:   o.TotalAmount,
		DepositAmount: o.DepositAmount,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func orderFromModel(m OrderModel) domain.Order {
	return domain.Order{
		ID:            m.ID,
		StudentID:     m.StudentID,
		PaperType:     m.PaperType,
		NumberOfPages: m.NumberOfPages,
		DueDate:       m.DueDate,
		TotalAmount:   m.TotalAmount,
		DepositAmount: m.DepositAmount,
		Status:        domain.OrderStatus(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func fileToModel(f domain.UploadedFile) UploadedFileModel {
	return UploadedFileModel{
		ID:        f.ID,
		OrderID:   f.OrderID,
		URL:       f.URL,
		Name:      f.Name,
		Size:      f.Size,
		MimeType:  f.MimeType,
		CreatedAt: f.CreatedAt,
	}
}

func fileFromModel(m UploadedFileModel) domain.UploadedFile {
	return domain.UploadedFile{
		ID:        m.ID,
		OrderID:   m.OrderID,
		URL:       m.URL,
		Name:      m.Name,
		Size:      m.Size,
		MimeType:  m.MimeType,
		CreatedAt: m.CreatedAt,
	}
}

func paymentToModel(p domain.Payment) PaymentModel {
	model := PaymentModel{
		ID:            p.ID,
		OrderID:       p.OrderID,
		Amount:        p.Amount,
		PaymentStatus: string(p.PaymentStatus),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.TransactionID != "" {
		tx := p.TransactionID
		model.TransactionID = &tx
	}
	return model
}

func paymentFromModel(m PaymentModel) domain.Payment {
	p := domain.Payment{
		ID:            m.ID,
		OrderID:       m.OrderID,
		Amount:        m.Amount,
		PaymentStatus: domain.PaymentStatus(m.PaymentStatus),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.TransactionID != nil {
		p.TransactionID = *m.TransactionID
	}
	return p
}

func paymentsFromModels(models []PaymentModel) []domain.Payment {
	res := make([]domain.Payment, 0, len(models))
	for _, m := range models {
		res = append(res, paymentFromModel(m))
	}
	return res
}

func assignmentToModel(a domain.Assignment) AssignmentModel {
	return AssignmentModel{
		ID:        a.ID,
		OrderID:   a.OrderID,
		WriterID:  a.WriterID,
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func assignmentFromModel(m AssignmentModel) domain.Assignment {
	return domain.Assignment{
		ID:        m.ID,
		OrderID:   m.OrderID,
		WriterID:  m.WriterID,
		Status:    domain.AssignmentStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func reviewToModel(r domain.Review) ReviewModel {
	return ReviewModel{
		ID:        r.ID,
		OrderID:   r.OrderID,
		QAID:      r.QAID,
		WriterID:  r.WriterID,
		Rating:    r.Rating,
		Comments:  r.Comments,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func reviewFromModel(m ReviewModel) domain.Review {
	return domain.Review{
		ID:        m.ID,
		OrderID:   m.OrderID,
		QAID:      m.QAID,
		WriterID:  m.WriterID,
		Rating:    m.Rating,
		Comments:  m.Comments,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
