package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "cortex/internal/errors"
	"cortex/internal/finance"
	"cortex/internal/models"
)

type goalService struct {
	db *gorm.DB
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB) GoalServicer {
	return &goalService{db: db}
}

func withPercentage(g *models.Goal) {
	g.Percentage = finance.GoalPercentage(g.CurrentAmount, g.TargetAmount)
}

// ListGoals returns the user's goals, oldest first.
func (s *goalService) ListGoals(userID string) ([]models.Goal, error) {
	goals := []models.Goal{}
	if err := s.db.Scopes(models.OwnedBy(userID)).Order("created_at ASC").Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range goals {
		withPercentage(&goals[i])
	}
	return goals, nil
}

// CreateGoal creates a savings goal.
func (s *goalService) CreateGoal(userID, name string, target, current int64, deadline *time.Time) (*models.Goal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if target <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target_amount must be positive")
	}
	if current < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "current_amount must not be negative")
	}

	goal := &models.Goal{
		UserID:        userID,
		Name:          name,
		TargetAmount:  target,
		CurrentAmount: current,
		Deadline:      deadline,
	}
	if err := s.db.Create(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	withPercentage(goal)
	return goal, nil
}

func (s *goalService) findGoal(userID, goalID string) (*models.Goal, error) {
	var goal models.Goal
	if err := s.db.Scopes(models.OwnedRecord(goalID, userID)).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}

// UpdateGoal changes the provided fields.
func (s *goalService) UpdateGoal(userID, goalID string, fields GoalUpdateFields) (*models.Goal, error) {
	goal, err := s.findGoal(userID, goalID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name must not be empty")
		}
		updates["name"] = name
	}
	if fields.TargetAmount != nil {
		if *fields.TargetAmount <= 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target_amount must be positive")
		}
		updates["target_amount"] = *fields.TargetAmount
	}
	if fields.CurrentAmount != nil {
		if *fields.CurrentAmount < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "current_amount must not be negative")
		}
		updates["current_amount"] = *fields.CurrentAmount
	}
	if fields.Deadline != nil {
		updates["deadline"] = *fields.Deadline
	}

	if len(updates) > 0 {
		if err := s.db.Model(goal).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if goal, err = s.findGoal(userID, goalID); err != nil {
			return nil, err
		}
	}
	withPercentage(goal)
	return goal, nil
}

// DeleteGoal soft-deletes a goal.
func (s *goalService) DeleteGoal(userID, goalID string) error {
	goal, err := s.findGoal(userID, goalID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(goal).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
