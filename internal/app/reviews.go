package app

import (
	"fmt"
	"time"

	"paperdesk/internal/authz"
	"paperdesk/internal/util"
	"paperdesk/pkg/domain"
)

// CreateReviewInput carries the fields for a QA review of a writer's
// work on an order.
type CreateReviewInput struct {
	OrderID  string
	WriterID string
	Rating   int
	Comments string
	Status   string
}

// CreateReview records a review authored by the QA actor.
func (a *App) CreateReview(actor *domain.User, in CreateReviewInput) (domain.Review, error) {
	if actor == nil {
		return domain.Review{}, ErrUnauthenticatedMutation
	}
	if !authz.Can(actor, authz.EntityReview, authz.ActionCreate, authz.Target{}) {
		return domain.Review{}, E(KindForbidden, MsgReviewCreateForbidden)
	}
	if in.Rating < 1 || in.Rating > 5 {
		return domain.Review{}, E(KindValidation, "rating must be between 1 and 5")
	}
	if _, ok, err := a.store.GetOrder(in.OrderID); err != nil {
		return domain.Review{}, fmt.Errorf("fetch order: %w", err)
	} else if !ok {
		return domain.Review{}, E(KindNotFound, MsgOrderNotFound)
	}
	now := time.Now().UTC()
	review := domain.Review{
		ID:        util.NewID(),
		OrderID:   in.OrderID,
		QAID:      actor.ID,
		WriterID:  in.WriterID,
		Rating:    in.Rating,
		Comments:  in.Comments,
		Status:    in.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.SaveReview(review); err != nil {
		return domain.Review{}, fmt.Errorf("save review: %w", err)
	}
	return review, nil
}

// UpdateReviewInput carries the editable review fields.
type UpdateReviewInput struct {
	Rating   *int
	Comments *string
	Status   *string
}

// UpdateReview lets the QA author or the reviewed writer amend a
// review.
func (a *App) UpdateReview(actor *domain.User, id string, in UpdateReviewInput) (domain.Review, error) {
	if actor == nil {
		return domain.Review{}, ErrUnauthenticatedMutation
	}
	review, ok, err := a.store.GetReview(id)
	if err != nil {
		return domain.Review{}, fmt.Errorf("fetch review: %w", err)
	}
	if !ok {
		return domain.Review{}, E(KindNotFound, MsgReviewNotFound)
	}
	if !authz.Can(actor, authz.EntityReview, authz.ActionUpdate, authz.Target{QAID: review.QAID, WriterID: review.WriterID}) {
		return domain.Review{}, E(KindForbidden, MsgReviewUpdateForbidden)
	}
	if in.Rating != nil {
		if *in.Rating < 1 || *in.Rating > 5 {
			return domain.Review{}, E(KindValidation, "rating must be between 1 and 5")
		}
		review.Rating = *in.Rating
	}
	if in.Comments != nil {
		review.Comments = *in.Comments
	}
	if in.Status != nil {
		review.Status = *in.Status
	}
	review.UpdatedAt = time.Now().UTC()
	if err := a.store.UpdateReview(review); err != nil {
		return domain.Review{}, fmt.Errorf("update review: %w", err)
	}
	return review, nil
}

// DeleteReview removes a review; only its QA author may do so.
func (a *App) DeleteReview(actor *domain.User, id string) (bool, error) {
	if actor == nil {
		return false, ErrUnauthenticatedMutation
	}
	review, ok, err := a.store.GetReview(id)
	if err != nil {
		return false, fmt.Errorf("fetch review: %w", err)
	}
	if !ok {
		return false, E(KindNotFound, MsgReviewNotFound)
	}
	if !authz.Can(actor, authz.EntityReview, authz.ActionDelete, authz.Target{QAID: review.QAID}) {
		return false, E(KindForbidden, MsgReviewDeleteForbidden)
	}
	if err := a.store.DeleteReview(id); err != nil {
		return false, fmt.Errorf("delete review: %w", err)
	}
	return true, nil
}

// ReviewsByUser lists reviews a user participated in (as QA author or
// reviewed writer), for admins or the subject themself.
func (a *App) ReviewsByUser(actor *domain.User, userID string) ([]domain.Review, error) {
	if actor == nil {
		return nil, ErrUnauthenticatedQuery
	}
	if !authz.Can(actor, authz.EntityReview, authz.ActionListByUser, authz.Target{SubjectID: userID}) {
		return nil, E(KindForbidden, MsgReviewsUnauthorized)
	}
	list, err := a.store.ListReviewsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	if len(list) == 0 {
		return nil, E(KindNotFound, MsgNoReviews)
	}
	return list, nil
}
