package controllers

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adiprasetyo/lokalmart-backend/pkg/db/models"
	"github.com/adiprasetyo/lokalmart-backend/pkg/enums"
	"github.com/adiprasetyo/lokalmart-backend/pkg/types"
)

// View structs decouple the JSON surface from the gorm models. Models stay
// persistence-only; anything crossing the wire is mapped here.

type userView struct {
	ID                 uuid.UUID            `json:"id"`
	Email              string               `json:"email"`
	Name               string               `json:"name"`
	PhotoURL           *string              `json:"photo_url,omitempty"`
	Role               enums.UserRole       `json:"role"`
	Points             int64                `json:"points"`
	IsBanned           bool                 `json:"is_banned"`
	IsVerified         bool                 `json:"is_verified"`
	FollowersCount     int                  `json:"followers_count"`
	FollowingCount     int                  `json:"following_count"`
	StoreName          *string              `json:"store_name,omitempty"`
	StoreLevel         int                  `json:"store_level"`
	StoreExp           int                  `json:"store_exp"`
	StoreStatus        enums.StoreStatus    `json:"store_status"`
	MembershipTier     enums.MembershipTier `json:"membership_tier"`
	SubscriptionEndsAt *time.Time           `json:"subscription_ends_at,omitempty"`
	LastLoginAt        *time.Time           `json:"last_login_at,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
}

func fromUser(u *models.User) userView {
	return userView{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		PhotoURL:           u.PhotoURL,
		Role:               u.Role,
		Points:             u.Points,
		IsBanned:           u.IsBanned,
		IsVerified:         u.IsVerified,
		FollowersCount:     len(u.Followers),
		FollowingCount:     len(u.Following),
		StoreName:          u.StoreName,
		StoreLevel:         u.StoreLevel,
		StoreExp:           u.StoreExp,
		StoreStatus:        u.StoreStatus,
		MembershipTier:     u.MembershipTier,
		SubscriptionEndsAt: u.SubscriptionEndsAt,
		LastLoginAt:        u.LastLoginAt,
		CreatedAt:          u.CreatedAt,
	}
}

func fromUsers(users []models.User) []userView {
	views := make([]userView, 0, len(users))
	for i := range users {
		views = append(views, fromUser(&users[i]))
	}
	return views
}

type productView struct {
	ID          uuid.UUID  `json:"id"`
	SellerID    *uuid.UUID `json:"seller_id,omitempty"`
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	Category    string     `json:"category"`
	Price       int64      `json:"price"`
	Stock       int        `json:"stock"`
	ImageURL    *string    `json:"image_url,omitempty"`
	IsFlashSale bool       `json:"is_flash_sale"`
	IsBoosted   bool       `json:"is_boosted"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func fromProduct(p *models.Product) productView {
	return productView{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		IsFlashSale: p.IsFlashSale,
		IsBoosted:   p.IsBoosted,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func fromProducts(products []models.Product) []productView {
	views := make([]productView, 0, len(products))
	for i := range products {
		views = append(views, fromProduct(&products[i]))
	}
	return views
}

type cartItemView struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      uuid.UUID  `json:"product_id"`
	SellerID       *uuid.UUID `json:"seller_id,omitempty"`
	ProductName    string     `json:"product_name"`
	UnitPrice      int64      `json:"unit_price"`
	Quantity       int        `json:"quantity"`
	CouponCode     *string    `json:"coupon_code,omitempty"`
	DiscountAmount int64      `json:"discount_amount"`
	LineTotal      int64      `json:"line_total"`
}

func fromCartItem(item *models.CartItem) cartItemView {
	total := item.UnitPrice*int64(item.Quantity) - item.DiscountAmount
	if total < 0 {
		total = 0
	}
	return cartItemView{
		ID:             item.ID,
		ProductID:      item.ProductID,
		SellerID:       item.SellerID,
		ProductName:    item.ProductName,
		UnitPrice:      item.UnitPrice,
		Quantity:       item.Quantity,
		CouponCode:     item.CouponCode,
		DiscountAmount: item.DiscountAmount,
		LineTotal:      total,
	}
}

func fromCartItems(items []models.CartItem) []cartItemView {
	views := make([]cartItemView, 0, len(items))
	for i := range items {
		views = append(views, fromCartItem(&items[i]))
	}
	return views
}

type orderView struct {
	ID              uuid.UUID         `json:"id"`
	OrderNumber     string            `json:"order_number"`
	UserID          uuid.UUID         `json:"user_id"`
	SellerID        *uuid.UUID        `json:"seller_id,omitempty"`
	ProductID       uuid.UUID         `json:"product_id"`
	ProductName     string            `json:"product_name"`
	Quantity        int               `json:"quantity"`
	OriginalPrice   int64             `json:"original_price"`
	DiscountAmount  int64             `json:"discount_amount"`
	Price           int64             `json:"price"`
	CouponCode      *string           `json:"coupon_code,omitempty"`
	Status          enums.OrderStatus `json:"status"`
	PaymentProofURL *string           `json:"payment_proof_url,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func fromOrder(o *models.Order) orderView {
	return orderView{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		SellerID:        o.SellerID,
		ProductID:       o.ProductID,
		ProductName:     o.ProductName,
		Quantity:        o.Quantity,
		OriginalPrice:   o.OriginalPrice,
		DiscountAmount:  o.DiscountAmount,
		Price:           o.Price,
		CouponCode:      o.CouponCode,
		Status:          o.Status,
		PaymentProofURL: o.PaymentProofURL,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func fromOrders(orders []models.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, fromOrder(&orders[i]))
	}
	return views
}

type couponView struct {
	ID              uuid.UUID   `json:"id"`
	Code            string      `json:"code"`
	Description     *string     `json:"description,omitempty"`
	DiscountAmount  int64       `json:"discount_amount"`
	IsActive        bool        `json:"is_active"`
	ExpiresAt       *time.Time  `json:"expires_at,omitempty"`
	MaxUsage        *int        `json:"max_usage,omitempty"`
	CurrentUsage    int         `json:"current_usage"`
	ValidProductIDs []uuid.UUID `json:"valid_product_ids"`
	CreatedAt       time.Time   `json:"created_at"`
}

func fromCoupon(c *models.Coupon) couponView {
	return couponView{
		ID:              c.ID,
		Code:            c.Code,
		Description:     c.Description,
		DiscountAmount:  c.DiscountAmount,
		IsActive:        c.IsActive,
		ExpiresAt:       c.ExpiresAt,
		MaxUsage:        c.MaxUsage,
		CurrentUsage:    c.CurrentUsage,
		ValidProductIDs: c.ValidProductIDs,
		CreatedAt:       c.CreatedAt,
	}
}

func fromCoupons(coupons []models.Coupon) []couponView {
	views := make([]couponView, 0, len(coupons))
	for i := range coupons {
		views = append(views, fromCoupon(&coupons[i]))
	}
	return views
}

type pointHistoryView struct {
	ID           uuid.UUID                  `json:"id"`
	Amount       int64                      `json:"amount"`
	Type         enums.PointTransactionType `json:"type"`
	Reason       string                     `json:"reason"`
	ActorName    *string                    `json:"actor_name,omitempty"`
	BalanceAfter int64                      `json:"balance_after"`
	CreatedAt    time.Time                  `json:"created_at"`
}

func fromPointHistory(entries []models.PointHistory) []pointHistoryView {
	views := make([]pointHistoryView, 0, len(entries))
	for i := range entries {
		entry := &entries[i]
		views = append(views, pointHistoryView{
			ID:           entry.ID,
			Amount:       entry.Amount,
			Type:         entry.Type,
			Reason:       entry.Reason,
			ActorName:    entry.ActorName,
			BalanceAfter: entry.BalanceAfter,
			CreatedAt:    entry.CreatedAt,
		})
	}
	return views
}

type planView struct {
	ID           uuid.UUID            `json:"id"`
	Tier         enums.MembershipTier `json:"tier"`
	Name         string               `json:"name"`
	PointCost    int64                `json:"point_cost"`
	DurationDays int                  `json:"duration_days"`
	DisplayPrice decimal.Decimal      `json:"display_price"`
	IsActive     bool                 `json:"is_active"`
}

func fromPlan(p *models.MembershipPlan) planView {
	return planView{
		ID:           p.ID,
		Tier:         p.Tier,
		Name:         p.Name,
		PointCost:    p.PointCost,
		DurationDays: p.DurationDays,
		DisplayPrice: p.DisplayPrice,
		IsActive:     p.IsActive,
	}
}

func fromPlans(plans []models.MembershipPlan) []planView {
	views := make([]planView, 0, len(plans))
	for i := range plans {
		views = append(views, fromPlan(&plans[i]))
	}
	return views
}

type eventConfigView struct {
	IsActive  bool              `json:"is_active"`
	SpinCost  int64             `json:"spin_cost"`
	Prizes    types.WheelPrizes `json:"prizes"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func fromEventConfig(cfg *models.EventConfig) eventConfigView {
	return eventConfigView{
		IsActive:  cfg.IsActive,
		SpinCost:  cfg.SpinCost,
		Prizes:    cfg.Prizes,
		UpdatedAt: cfg.UpdatedAt,
	}
}

type chatSessionView struct {
	ID            uuid.UUID               `json:"id"`
	UserID        uuid.UUID               `json:"user_id"`
	SellerID      *uuid.UUID              `json:"seller_id,omitempty"`
	Kind          enums.ChatSessionKind   `json:"kind"`
	Status        enums.ChatSessionStatus `json:"status"`
	LastMessageAt *time.Time              `json:"last_message_at,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
}

func fromChatSession(s *models.ChatSession) chatSessionView {
	return chatSessionView{
		ID:            s.ID,
		UserID:        s.UserID,
		SellerID:      s.SellerID,
		Kind:          s.Kind,
		Status:        s.Status,
		LastMessageAt: s.LastMessageAt,
		CreatedAt:     s.CreatedAt,
	}
}

func fromChatSessions(sessions []models.ChatSession) []chatSessionView {
	views := make([]chatSessionView, 0, len(sessions))
	for i := range sessions {
		views = append(views, fromChatSession(&sessions[i]))
	}
	return views
}

type chatMessageView struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func fromChatMessage(m *models.ChatMessage) chatMessageView {
	return chatMessageView{
		ID:        m.ID,
		SessionID: m.SessionID,
		SenderID:  m.SenderID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}

func fromChatMessages(messages []models.ChatMessage) []chatMessageView {
	views := make([]chatMessageView, 0, len(messages))
	for i := range messages {
		views = append(views, fromChatMessage(&messages[i]))
	}
	return views
}

type reviewView struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func fromReview(rv *models.Review) reviewView {
	return reviewView{
		ID:        rv.ID,
		ProductID: rv.ProductID,
		UserID:    rv.UserID,
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt,
		UpdatedAt: rv.UpdatedAt,
	}
}

func fromReviews(reviews []models.Review) []reviewView {
	views := make([]reviewView, 0, len(reviews))
	for i := range reviews {
		views = append(views, fromReview(&reviews[i]))
	}
	return views
}

type reportView struct {
	ID         uuid.UUID          `json:"id"`
	ReporterID uuid.UUID          `json:"reporter_id"`
	TargetType string             `json:"target_type"`
	TargetID   uuid.UUID          `json:"target_id"`
	Reason     string             `json:"reason"`
	Status     enums.ReportStatus `json:"status"`
	ResolvedBy *uuid.UUID         `json:"resolved_by,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

func fromReport(rep *models.Report) reportView {
	return reportView{
		ID:         rep.ID,
		ReporterID: rep.ReporterID,
		TargetType: rep.TargetType,
		TargetID:   rep.TargetID,
		Reason:     rep.Reason,
		Status:     rep.Status,
		ResolvedBy: rep.ResolvedBy,
		CreatedAt:  rep.CreatedAt,
	}
}

func fromReports(reports []models.Report) []reportView {
	views := make([]reportView, 0, len(reports))
	for i := range reports {
		views = append(views, fromReport(&reports[i]))
	}
	return views
}

type feedbackView struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func fromFeedback(entries []models.Feedback) []feedbackView {
	views := make([]feedbackView, 0, len(entries))
	for i := range entries {
		views = append(views, feedbackView{
			ID:        entries[i].ID,
			UserID:    entries[i].UserID,
			Message:   entries[i].Message,
			CreatedAt: entries[i].CreatedAt,
		})
	}
	return views
}

type mediaView struct {
	ID        uuid.UUID       `json:"id"`
	Kind      enums.MediaKind `json:"kind"`
	URL       string          `json:"url"`
	FileName  string          `json:"file_name"`
	MimeType  string          `json:"mime_type"`
	SizeBytes int64           `json:"size_bytes"`
	CreatedAt time.Time       `json:"created_at"`
}

func fromMedia(m *models.Media) mediaView {
	return mediaView{
		ID:        m.ID,
		Kind:      m.Kind,
		URL:       m.URL,
		FileName:  m.FileName,
		MimeType:  m.MimeType,
		SizeBytes: m.SizeBytes,
		CreatedAt: m.CreatedAt,
	}
}

func fromMediaList(media []models.Media) []mediaView {
	views := make([]mediaView, 0, len(media))
	for i := range media {
		views = append(views, fromMedia(&media[i]))
	}
	return views
}

type archiveView struct {
	ID        uuid.UUID         `json:"id"`
	Kind      enums.ArchiveKind `json:"kind"`
	ItemCount int               `json:"item_count"`
	Payload   json.RawMessage   `json:"payload"`
	CreatedAt time.Time         `json:"created_at"`
}

func fromArchives(archives []models.Archive) []archiveView {
	views := make([]archiveView, 0, len(archives))
	for i := range archives {
		views = append(views, archiveView{
			ID:        archives[i].ID,
			Kind:      archives[i].Kind,
			ItemCount: archives[i].ItemCount,
			Payload:   archives[i].Payload,
			CreatedAt: archives[i].CreatedAt,
		})
	}
	return views
}

type activityView struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	ActorName string     `json:"actor_name"`
	Action    string     `json:"action"`
	Detail    *string    `json:"detail,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func fromActivityLogs(logs []models.ActivityLog) []activityView {
	views := make([]activityView, 0, len(logs))
	for i := range logs {
		views = append(views, activityView{
			ID:        logs[i].ID,
			UserID:    logs[i].UserID,
			ActorName: logs[i].ActorName,
			Action:    logs[i].Action,
			Detail:    logs[i].Detail,
			CreatedAt: logs[i].CreatedAt,
		})
	}
	return views
}
