package model

import "strings"

// Типы участников.
const (
	// ContributorTypePerson — физическое лицо.
	ContributorTypePerson = "person"
	// ContributorTypeOrganization — организация.
	ContributorTypeOrganization = "organization"
)

// Роли участника релиза в порядке отображения.
const (
	RoleAuthor      = "author"
	RoleArchitect   = "architect"
	RoleCurator     = "curator"
	RoleDesigner    = "designer"
	RoleCopyrighter = "copyrightHolder"
)

// Affiliation — аффилиация участника.
type Affiliation struct {
	// Name — название организации
	Name string `json:"name"`
	// URL — сайт организации (опционально)
	URL string `json:"url,omitempty"`
	// RORID — идентификатор ROR (опционально)
	RORID string `json:"ror_id,omitempty"`
}

// Contributor — переиспользуемая идентичность участника.
// Разделяется между релизами; правка идентичности — отдельная операция
// от правки ReleaseContributor.
type Contributor struct {
	// ID — идентификатор участника в Repository API (0 — ещё не сохранён)
	ID int64 `json:"id"`
	// GivenName — имя
	GivenName string `json:"given_name"`
	// MiddleName — отчество / среднее имя (опционально)
	MiddleName string `json:"middle_name,omitempty"`
	// FamilyName — фамилия
	FamilyName string `json:"family_name"`
	// Email — email (опционально)
	Email string `json:"email,omitempty"`
	// Type — тип участника (person, organization)
	Type string `json:"type"`
	// Affiliations — список аффилиаций
	Affiliations []Affiliation `json:"affiliations,omitempty"`
	// UserID — связанный пользователь платформы (nil — не связан)
	UserID *int64 `json:"user_id,omitempty"`
}

// DisplayName возвращает отображаемое имя участника.
// Для организаций — GivenName целиком, для людей — "Имя Фамилия".
func (c *Contributor) DisplayName() string {
	if c.Type == ContributorTypeOrganization {
		return c.GivenName
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{c.GivenName, c.MiddleName, c.FamilyName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// SameIdentity сообщает, ссылаются ли два участника на одну идентичность.
// Сохранённые участники сравниваются по ID, несохранённые — по email
// либо по полному имени.
func (c *Contributor) SameIdentity(other *Contributor) bool {
	if c.ID != 0 && other.ID != 0 {
		return c.ID == other.ID
	}
	if c.Email != "" && other.Email != "" {
		return strings.EqualFold(c.Email, other.Email)
	}
	return c.Type == other.Type && c.DisplayName() == other.DisplayName()
}

// ReleaseContributor — участие Contributor в конкретном релизе.
// Порядок значим: позиция 0 — первый автор в цитировании.
type ReleaseContributor struct {
	// Contributor — идентичность участника
	Contributor Contributor `json:"contributor"`
	// Roles — упорядоченный набор ролей (author, designer, ...)
	Roles []string `json:"roles"`
	// IncludeInCitation — включать ли участника в цитирование
	IncludeInCitation bool `json:"include_in_citation"`
	// Position — позиция в списке (0 — первичный участник цитирования)
	Position int `json:"index"`
}
