package campusgate

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SchoolDirectory is the domain allow-list guarding verification requests.
// It is loaded once at startup and read-only afterwards.
type SchoolDirectory struct {
	schools map[string]SchoolData
}

// NewSchoolDirectory builds a directory from an already-parsed listing, keyed
// by school identifier.
func NewSchoolDirectory(listing map[string]SchoolData) (*SchoolDirectory, error) {
	if len(listing) == 0 {
		return nil, errors.New("school listing must not be empty")
	}

	schools := make(map[string]SchoolData, len(listing))
	for key, data := range listing {
		if len(data.EmailDomains) == 0 {
			return nil, fmt.Errorf("school %q has no email domains", key)
		}
		schools[key] = data
	}
	return &SchoolDirectory{schools: schools}, nil
}

// LoadSchoolDirectory reads a YAML school listing. The file maps school keys
// to {name, shortenedName, emailDomains}; domains may carry a leading "@".
func LoadSchoolDirectory(path string) (*SchoolDirectory, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSchoolDirectory(contents)
}

// ParseSchoolDirectory describes the parseschooldirectory operation and its observable behavior.
//
// ParseSchoolDirectory may return an error when input validation, dependency calls, or security checks fail.
// ParseSchoolDirectory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ParseSchoolDirectory(contents []byte) (*SchoolDirectory, error) {
	var listing map[string]SchoolData
	if err := yaml.Unmarshal(contents, &listing); err != nil {
		return nil, fmt.Errorf("invalid school listing: %w", err)
	}
	return NewSchoolDirectory(listing)
}

// IsAllowedEmail reports whether the email's domain belongs to a listed
// school. A subdomain of a listed domain matches too: mail.sfu.ca is allowed
// when sfu.ca is listed.
func (d *SchoolDirectory) IsAllowedEmail(email string) bool {
	_, ok := d.lookup(email)
	return ok
}

// SchoolByEmail returns the school the email's domain belongs to.
func (d *SchoolDirectory) SchoolByEmail(email string) (SchoolInfo, error) {
	info, ok := d.lookup(email)
	if !ok {
		return SchoolInfo{}, errors.New("email domain does not belong to any school")
	}
	return info, nil
}

// Schools returns the directory entries sorted by key.
func (d *SchoolDirectory) Schools() []SchoolInfo {
	keys := make([]string, 0, len(d.schools))
	for key := range d.schools {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	infos := make([]SchoolInfo, 0, len(keys))
	for _, key := range keys {
		infos = append(infos, SchoolInfo{Key: key, Data: d.schools[key]})
	}
	return infos
}

func (d *SchoolDirectory) lookup(email string) (SchoolInfo, bool) {
	if d == nil {
		return SchoolInfo{}, false
	}

	at := strings.LastIndexByte(email, '@')
	if at < 0 || at == len(email)-1 {
		return SchoolInfo{}, false
	}
	domain := strings.ToLower(email[at+1:])

	for key, data := range d.schools {
		for _, allowed := range data.EmailDomains {
			allowed = strings.ToLower(strings.TrimPrefix(allowed, "@"))
			if domain == allowed || strings.HasSuffix(domain, "."+allowed) {
				return SchoolInfo{Key: key, Data: data}, true
			}
		}
	}
	return SchoolInfo{}, false
}
