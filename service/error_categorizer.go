package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ludo-technologies/clumpscn/domain"
)

// ErrorCategorizerImpl implements the ErrorCategorizer interface
type ErrorCategorizerImpl struct {
	patterns []categoryPatterns
}

type categoryPatterns struct {
	category domain.ErrorCategory
	patterns []string
}

// NewErrorCategorizer creates a new error categorizer
func NewErrorCategorizer() domain.ErrorCategorizer {
	return &ErrorCategorizerImpl{
		patterns: initializeErrorPatterns(),
	}
}

// initializeErrorPatterns lists message fragments per category. Order matters:
// the first matching category wins.
func initializeErrorPatterns() []categoryPatterns {
	return []categoryPatterns{
		{domain.ErrorCategoryTimeout, []string{
			"timeout",
			"deadline",
			"context canceled",
			"operation timed out",
		}},
		{domain.ErrorCategoryConfig, []string{
			"config",
			"toml",
			"invalid settings",
			"modifier",
			"minimum",
		}},
		{domain.ErrorCategoryInput, []string{
			"invalid input",
			"no ast files",
			"file not found",
			"directory",
			"cannot access",
			"permission denied",
		}},
		{domain.ErrorCategoryOutput, []string{
			"write",
			"output",
			"unsupported format",
			"cannot create",
		}},
		{domain.ErrorCategoryProcessing, []string{
			"parse",
			"contract",
			"analysis",
			"detection",
			"json",
		}},
	}
}

// codeCategories maps domain error codes directly, ahead of message matching
var codeCategories = map[string]domain.ErrorCategory{
	domain.ErrCodeInvalidInput:      domain.ErrorCategoryInput,
	domain.ErrCodeFileNotFound:      domain.ErrorCategoryInput,
	domain.ErrCodeConfigError:       domain.ErrorCategoryConfig,
	domain.ErrCodeOutputError:       domain.ErrorCategoryOutput,
	domain.ErrCodeUnsupportedFormat: domain.ErrorCategoryOutput,
	domain.ErrCodeParseError:        domain.ErrorCategoryProcessing,
	domain.ErrCodeAnalysisError:     domain.ErrorCategoryProcessing,
	domain.ErrCodeContractViolation: domain.ErrorCategoryProcessing,
}

// Categorize determines the category of an error
func (ec *ErrorCategorizerImpl) Categorize(err error) *domain.CategorizedError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ec.categorized(domain.ErrorCategoryTimeout, err)
	}
	if category, ok := codeCategories[domain.ErrorCode(err)]; ok {
		return ec.categorized(category, err)
	}

	errMsg := strings.ToLower(err.Error())
	for _, entry := range ec.patterns {
		if containsAnyPattern(errMsg, entry.patterns) {
			return ec.categorized(entry.category, err)
		}
	}

	return &domain.CategorizedError{
		Category: domain.ErrorCategoryUnknown,
		Message:  err.Error(),
		Original: err,
	}
}

func (ec *ErrorCategorizerImpl) categorized(category domain.ErrorCategory, err error) *domain.CategorizedError {
	return &domain.CategorizedError{
		Category: category,
		Message:  ec.getCategoryMessage(category),
		Original: err,
	}
}

// GetRecoverySuggestions returns recovery suggestions for an error category
func (ec *ErrorCategorizerImpl) GetRecoverySuggestions(category domain.ErrorCategory) []string {
	suggestions := map[domain.ErrorCategory][]string{
		domain.ErrorCategoryInput: {
			"Check that the directory exists and contains AST JSON files",
			"Try: clumpscn detect <ast-dir> --verbose to see which files are loaded",
			"Ensure you have read permissions for the target files",
		},
		domain.ErrorCategoryConfig: {
			"Verify configuration file format and values",
			"Try: clumpscn init to generate a valid config file",
			"Probability modifiers must lie in [0, 1] and minimums must be at least 1",
			"fastDetection requires an exact name matcher and a type modifier of 0 or 1",
		},
		domain.ErrorCategoryTimeout: {
			"Consider detecting on a smaller project or increasing the timeout",
			"Keep --fast-detection enabled for large projects",
		},
		domain.ErrorCategoryOutput: {
			"Check write permissions and output format validity",
			"Use --format text, json, yaml or csv",
			"Ensure output directory exists and is writable",
		},
		domain.ErrorCategoryProcessing: {
			"Some AST files may be malformed; regenerate them with the front-end",
			"A contract violation means the AST references classes or methods that were not loaded",
			"Check that ignore patterns do not exclude the owners of kept members",
		},
		domain.ErrorCategoryUnknown: {
			"Run with --verbose for detailed error information",
			"Report the issue if it persists",
		},
	}

	if sug, ok := suggestions[category]; ok {
		return sug
	}
	return []string{"Check the error message for more details"}
}

// getCategoryMessage returns a user-friendly message for an error category
func (ec *ErrorCategorizerImpl) getCategoryMessage(category domain.ErrorCategory) string {
	messages := map[domain.ErrorCategory]string{
		domain.ErrorCategoryInput:      "Failed to load AST files",
		domain.ErrorCategoryConfig:     "Configuration file or settings error",
		domain.ErrorCategoryTimeout:    "Detection was cancelled or timed out",
		domain.ErrorCategoryOutput:     "Failed to generate or write output",
		domain.ErrorCategoryProcessing: "Error during data clump detection",
		domain.ErrorCategoryUnknown:    "An unexpected error occurred",
	}

	if msg, ok := messages[category]; ok {
		return msg
	}
	return "An error occurred"
}

// containsAnyPattern checks if a string contains any of the given patterns
func containsAnyPattern(str string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(str, pattern) {
			return true
		}
	}
	return false
}
