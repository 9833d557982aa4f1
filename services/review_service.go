package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/restoscan/resto-app/models"
)

// RatingSlot is one reviewable line: a distinct (menu id, sorted option
// names) combination across the session's orders, independent of how many
// times or in how many orders it was purchased.
type RatingSlot struct {
	MenuID      uint     `json:"menu_id"`
	OrderID     uint     `json:"order_id"`
	ItemName    string   `json:"item_name"`
	OptionNames []string `json:"option_names,omitempty"`
	Key         string   `json:"key"`
}

// SlotKey builds the dedup key: menu id plus the sorted names of the
// selected options. The reserved "note" key is free text, not an option.
func SlotKey(menuID uint, options map[string]any) string {
	names := selectedOptionNames(options)
	return fmt.Sprintf("%d|%s", menuID, strings.Join(names, ","))
}

func selectedOptionNames(options map[string]any) []string {
	var names []string
	for name, v := range options {
		if name == "note" || !optionSelected(v) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type ReviewService struct {
	DB *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{DB: db}
}

// Slots produces one rating slot per distinct combination over the given
// session orders. Repeat visits are independent: dedup never crosses
// sessions because the caller only passes one session's orders.
func (s *ReviewService) Slots(orders []models.Order) []RatingSlot {
	var slots []RatingSlot
	seen := make(map[string]bool)

	for _, order := range orders {
		for _, item := range order.Items {
			key := SlotKey(item.MenuID, item.Options)
			if seen[key] {
				continue
			}
			seen[key] = true
			slots = append(slots, RatingSlot{
				MenuID:      item.MenuID,
				OrderID:     order.ID,
				ItemName:    item.Name,
				OptionNames: selectedOptionNames(item.Options),
				Key:         key,
			})
		}
	}
	return slots
}

// RatingSubmission carries one rated slot from the post-meal form.
type RatingSubmission struct {
	MenuID      uint     `json:"menu_id" binding:"required"`
	OrderID     uint     `json:"order_id" binding:"required"`
	ItemName    string   `json:"item_name"`
	OptionNames []string `json:"option_names"`
	Rating      int      `json:"rating" binding:"required,min=1,max=5"`
	Comment     string   `json:"comment"`
}

// Submit writes one review document per rated slot; the selected option
// names are appended to the comment for context.
func (s *ReviewService) Submit(tableID *uint, customerName, customerPhone string, ratings []RatingSubmission) ([]models.Review, error) {
	reviews := make([]models.Review, 0, len(ratings))
	for _, r := range ratings {
		comment := r.Comment
		if len(r.OptionNames) > 0 {
			comment = strings.TrimSpace(comment + " (" + strings.Join(r.OptionNames, ", ") + ")")
		}
		reviews = append(reviews, models.Review{
			MenuID:        r.MenuID,
			OrderID:       r.OrderID,
			TableID:       tableID,
			Rating:        r.Rating,
			Comment:       comment,
			ItemName:      r.ItemName,
			CustomerName:  customerName,
			CustomerPhone: customerPhone,
			CreatedAt:     time.Now(),
		})
	}
	if err := s.DB.Create(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}
