package workflow

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/repoport/internal/utils"
)

const (
	migrationsLoadErrorTemplateConstant          = "failed to load migration definitions: %w"
	migrationsParseErrorTemplateConstant         = "failed to parse migration definitions: %w"
	migrationsPathRequiredMessageConstant        = "migration definitions path must be provided"
	migrationsEmptyMessageConstant               = "migration definitions must define at least one migration"
	migrationNameRequiredMessageConstant         = "migration names must be non-empty"
	migrationDuplicateNameMessageConstant        = "migration definitions contain duplicate migration names"
	migrationOriginRequiredTemplateConstant      = "migration %s missing origin repository path"
	migrationDestinationRequiredTemplateConstant = "migration %s missing destination repository path"
	migrationUnknownNameTemplateConstant         = "no migration named %q is defined"
	defaultOriginLabelNameConstant               = "RepoOrigin-RevId"
	defaultAuthorNameConstant                    = "Repoport Importer"
	defaultAuthorEmailConstant                   = "importer@repoport.invalid"
)

// MigrationDefinition describes one origin-to-destination migration loaded
// from the definitions file.
type MigrationDefinition struct {
	Name          string                    `yaml:"name" json:"name"`
	Origin        string                    `yaml:"origin" json:"origin"`
	Destination   string                    `yaml:"destination" json:"destination"`
	Mode          string                    `yaml:"mode" json:"mode"`
	Baseline      string                    `yaml:"baseline" json:"baseline"`
	OriginLabel   string                    `yaml:"origin_label" json:"origin_label"`
	ExcludedPaths []string                  `yaml:"excluded_paths" json:"excluded_paths"`
	DefaultAuthor MigrationAuthorDefinition `yaml:"default_author" json:"default_author"`
}

// MigrationAuthorDefinition captures the authorship recorded when origin
// authorship is not preserved.
type MigrationAuthorDefinition struct {
	Name  string `yaml:"name" json:"name"`
	Email string `yaml:"email" json:"email"`
}

// MigrationsConfiguration holds every migration definition from one file.
type MigrationsConfiguration struct {
	Migrations []MigrationDefinition `yaml:"migrations" json:"migrations"`

	migrationLookup map[string]MigrationDefinition
}

// Migration returns the definition registered under the supplied name.
func (configuration MigrationsConfiguration) Migration(migrationName string) (MigrationDefinition, error) {
	definition, exists := configuration.migrationLookup[strings.TrimSpace(migrationName)]
	if !exists {
		return MigrationDefinition{}, ValidationError{
			Message: fmt.Sprintf(migrationUnknownNameTemplateConstant, migrationName),
		}
	}
	return definition, nil
}

// LoadMigrations reads migration definitions from disk and performs basic
// validation, normalizing repository paths and filling defaulted fields.
func LoadMigrations(filePath string) (MigrationsConfiguration, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return MigrationsConfiguration{}, errors.New(migrationsPathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return MigrationsConfiguration{}, fmt.Errorf(migrationsLoadErrorTemplateConstant, readError)
	}

	var configuration MigrationsConfiguration
	if unmarshalError := yaml.Unmarshal(contentBytes, &configuration); unmarshalError != nil {
		return MigrationsConfiguration{}, fmt.Errorf(migrationsParseErrorTemplateConstant, unmarshalError)
	}
	if len(configuration.Migrations) == 0 {
		return MigrationsConfiguration{}, errors.New(migrationsEmptyMessageConstant)
	}

	homeExpander := utils.NewHomeExpander()
	migrationLookup := make(map[string]MigrationDefinition, len(configuration.Migrations))
	for migrationIndex := range configuration.Migrations {
		sanitized, sanitizeError := sanitizeMigrationDefinition(configuration.Migrations[migrationIndex], homeExpander)
		if sanitizeError != nil {
			return MigrationsConfiguration{}, sanitizeError
		}
		if _, exists := migrationLookup[sanitized.Name]; exists {
			return MigrationsConfiguration{}, errors.New(migrationDuplicateNameMessageConstant)
		}
		configuration.Migrations[migrationIndex] = sanitized
		migrationLookup[sanitized.Name] = sanitized
	}
	configuration.migrationLookup = migrationLookup

	return configuration, nil
}

func sanitizeMigrationDefinition(definition MigrationDefinition, homeExpander *utils.HomeExpander) (MigrationDefinition, error) {
	definition.Name = strings.TrimSpace(definition.Name)
	if len(definition.Name) == 0 {
		return MigrationDefinition{}, errors.New(migrationNameRequiredMessageConstant)
	}

	definition.Origin = homeExpander.Expand(strings.TrimSpace(definition.Origin))
	if len(definition.Origin) == 0 {
		return MigrationDefinition{}, ValidationError{
			Message: fmt.Sprintf(migrationOriginRequiredTemplateConstant, definition.Name),
		}
	}
	definition.Destination = homeExpander.Expand(strings.TrimSpace(definition.Destination))
	if len(definition.Destination) == 0 {
		return MigrationDefinition{}, ValidationError{
			Message: fmt.Sprintf(migrationDestinationRequiredTemplateConstant, definition.Name),
		}
	}

	definition.Mode = strings.TrimSpace(definition.Mode)
	if len(definition.Mode) == 0 {
		definition.Mode = string(ModeSquash)
	}
	if _, modeError := ParseMode(definition.Mode); modeError != nil {
		return MigrationDefinition{}, modeError
	}

	definition.OriginLabel = strings.TrimSpace(definition.OriginLabel)
	if len(definition.OriginLabel) == 0 {
		definition.OriginLabel = defaultOriginLabelNameConstant
	}
	if len(strings.TrimSpace(definition.DefaultAuthor.Name)) == 0 {
		definition.DefaultAuthor.Name = defaultAuthorNameConstant
	}
	if len(strings.TrimSpace(definition.DefaultAuthor.Email)) == 0 {
		definition.DefaultAuthor.Email = defaultAuthorEmailConstant
	}

	return definition, nil
}
