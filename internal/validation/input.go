package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/freelynk/freelynk-backend/internal/models"
)

// Константы валидации
const (
	MinNameLength           = 2
	MaxNameLength           = 100
	MinProjectTitleLength   = 3
	MaxProjectTitleLength   = 100
	MinProjectDescLength    = 10
	MaxProjectDescLength    = 5000
	MaxBidProposalLength    = 2000
	MinBidProposalLength    = 10
	MinEstimatedDays        = 1
	MaxEstimatedDays        = 365
	MaxBioLength            = 500
	MaxLocationLength       = 100
	MaxSkillLength          = 50
	MaxSkillsCount          = 50
	MinBudget               = 0.0
	MaxBudget               = 100000000.0 // 100 миллионов
	MinHourlyRate           = 0.0
	MaxHourlyRate           = 100000.0
	MaxExternalLinkLength   = 500
)

var emailRegex = regexp.MustCompile(`^[a-z0-9._+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("некорректный формат email")
	}
	return nil
}

// ValidateBudget проверяет бюджет проекта.
func ValidateBudget(budget float64) error {
	if budget < MinBudget {
		return fmt.Errorf("бюджет не может быть отрицательным")
	}
	if budget > MaxBudget {
		return fmt.Errorf("бюджет не может превышать %.0f", MaxBudget)
	}
	return nil
}

// ValidateBidAmount проверяет сумму ставки.
func ValidateBidAmount(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("сумма ставки не может быть отрицательной")
	}
	if amount > MaxBudget {
		return fmt.Errorf("сумма ставки не может превышать %.0f", MaxBudget)
	}
	return nil
}

// ValidateBidProposal проверяет текст предложения в ставке.
func ValidateBidProposal(proposal string) error {
	if err := ValidateNonEmpty("текст предложения", proposal); err != nil {
		return err
	}
	return ValidateLength("текст предложения", proposal, MinBidProposalLength, MaxBidProposalLength)
}

// ValidateEstimatedDays проверяет срок выполнения в днях.
func ValidateEstimatedDays(days int) error {
	if days < MinEstimatedDays || days > MaxEstimatedDays {
		return fmt.Errorf("срок выполнения должен быть от %d до %d дней", MinEstimatedDays, MaxEstimatedDays)
	}
	return nil
}

// ValidateProjectCategory проверяет категорию проекта.
func ValidateProjectCategory(category string) error {
	if _, ok := models.ValidProjectCategories[category]; !ok {
		return fmt.Errorf("неизвестная категория проекта: %s", category)
	}
	return nil
}

// ValidateProjectStatus проверяет статус проекта.
func ValidateProjectStatus(status string) error {
	if _, ok := models.ValidProjectStatuses[status]; !ok {
		return fmt.Errorf("неизвестный статус проекта: %s", status)
	}
	return nil
}

// ValidateSkills проверяет список навыков.
func ValidateSkills(skills []string) error {
	if len(skills) > MaxSkillsCount {
		return fmt.Errorf("навыков не может быть больше %d", MaxSkillsCount)
	}
	for _, skill := range skills {
		if err := ValidateNonEmpty("навык", skill); err != nil {
			return err
		}
		if err := ValidateLength("навык", skill, 1, MaxSkillLength); err != nil {
			return err
		}
	}
	return nil
}
