package models

// ProjectStatus константы статусов проектов
const (
	ProjectStatusOpen       = "open"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusCompleted  = "completed"
	ProjectStatusCancelled  = "cancelled"
)

// BidStatus константы статусов ставок
const (
	BidStatusPending  = "pending"
	BidStatusAccepted = "accepted"
	BidStatusRejected = "rejected"
)

// Роли пользователей
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
)

// Категории проектов
const (
	CategoryWebDevelopment    = "web_development"
	CategoryMobileDevelopment = "mobile_development"
	CategoryDesign            = "design"
	CategoryWriting           = "writing"
	CategoryMarketing         = "marketing"
	CategoryDataScience       = "data_science"
	CategoryOther             = "other"
)

// ValidProjectStatuses список валидных статусов проектов
var ValidProjectStatuses = map[string]struct{}{
	ProjectStatusOpen:       {},
	ProjectStatusInProgress: {},
	ProjectStatusCompleted:  {},
	ProjectStatusCancelled:  {},
}

// ValidBidStatuses список валидных статусов ставок
var ValidBidStatuses = map[string]struct{}{
	BidStatusPending:  {},
	BidStatusAccepted: {},
	BidStatusRejected: {},
}

// ValidProjectCategories список валидных категорий проектов
var ValidProjectCategories = map[string]struct{}{
	CategoryWebDevelopment:    {},
	CategoryMobileDevelopment: {},
	CategoryDesign:            {},
	CategoryWriting:           {},
	CategoryMarketing:         {},
	CategoryDataScience:       {},
	CategoryOther:             {},
}

// ValidRoles список валидных ролей
var ValidRoles = map[string]struct{}{
	RoleClient:     {},
	RoleFreelancer: {},
}
