// metaschema.go — декларативная схема метаданных релиза.
// Из неё выводятся значения по умолчанию, карта обязательных полей
// (UI-звёздочки) и валидация — и для формы, и для publish-гейта.
package release

import (
	"fmt"

	"github.com/bigkaa/modelstore/editor-module/internal/domain/model"
	"github.com/bigkaa/modelstore/editor-module/internal/domain/schema"
)

// Имена полей метаданных.
const (
	fieldReleaseNotes         = "release_notes"
	fieldEmbargoEndDate       = "embargo_end_date"
	fieldOS                   = "os"
	fieldPlatforms            = "platforms"
	fieldProgrammingLanguages = "programming_languages"
	fieldLicense              = "license"
)

// structuralFields — поля, замороженные после публикации.
// После Live редактируемыми остаются только документационные поля
// (release_notes); попытка записи структурного поля отклоняется
// до сетевого вызова.
var structuralFields = map[string]bool{
	fieldEmbargoEndDate:       true,
	fieldOS:                   true,
	fieldPlatforms:            true,
	fieldProgrammingLanguages: true,
	fieldLicense:              true,
}

// maxReleaseNotesLen — предел длины заметок к релизу.
const maxReleaseNotesLen = 20000

// newMetadataEngine строит schema.Engine метаданных релиза.
// Набор литералов лицензии зависит от релиза (possible_licenses),
// поэтому движок создаётся на каждый Machine при Initialize.
func newMetadataEngine(possibleLicenses []model.License) (*schema.Engine, error) {
	licenseLiterals := make([]any, 0, len(possibleLicenses))
	for _, lic := range possibleLicenses {
		licenseLiterals = append(licenseLiterals, lic.Name)
	}

	osLiterals := make([]any, 0, len(model.OSOptions))
	for _, os := range model.OSOptions {
		osLiterals = append(osLiterals, os)
	}

	root := &schema.ObjectNode{
		Fields: map[string]schema.Node{
			fieldReleaseNotes: &schema.StringNode{
				Rules: []schema.Rule{schema.MaxLength{Max: maxReleaseNotesLen}},
			},
			fieldEmbargoEndDate: &schema.DateNode{
				Nullable: true,
				Rules:    []schema.Rule{schema.FutureDate{}},
			},
			fieldOS: &schema.EnumNode{
				Literals: osLiterals,
				Rules:    []schema.Rule{schema.Required{Message: "операционная система не выбрана"}},
			},
			fieldPlatforms: &schema.ArrayNode{
				Rules: []schema.Rule{schema.Required{Message: "не указана ни одна платформа"}},
			},
			fieldProgrammingLanguages: &schema.ArrayNode{
				Rules: []schema.Rule{schema.Required{Message: "не указан ни один язык программирования"}},
			},
			fieldLicense: &schema.EnumNode{
				Literals: licenseLiterals,
				Rules:    []schema.Rule{schema.NonNull{}},
			},
		},
	}

	eng, err := schema.New(root)
	if err != nil {
		return nil, fmt.Errorf("схема метаданных: %w", err)
	}
	return eng, nil
}
