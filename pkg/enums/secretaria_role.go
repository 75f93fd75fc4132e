package enums

import "fmt"

// SecretariaRole is the second-level role applied within the secretaria
// user type. It carries an explicit ordering used for hierarchy gates.
type SecretariaRole string

const (
	SecretariaRoleOperacional        SecretariaRole = "secretaria_operacional"
	SecretariaRoleSecretarioEducacao SecretariaRole = "secretario_educacao"
	SecretariaRoleDiretor            SecretariaRole = "diretor"
)

var validSecretariaRoles = []SecretariaRole{
	SecretariaRoleOperacional,
	SecretariaRoleSecretarioEducacao,
	SecretariaRoleDiretor,
}

// secretariaRoleLevels encodes the ordered ranking:
// secretaria_operacional(1) < secretario_educacao(2) < diretor(3).
var secretariaRoleLevels = map[SecretariaRole]int{
	SecretariaRoleOperacional:        1,
	SecretariaRoleSecretarioEducacao: 2,
	SecretariaRoleDiretor:            3,
}

// String implements fmt.Stringer.
func (s SecretariaRole) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SecretariaRole.
func (s SecretariaRole) IsValid() bool {
	for _, candidate := range validSecretariaRoles {
		if candidate == s {
			return true
		}
	}
	return false
}

// Level returns the numeric hierarchy level, or 0 for unknown values so
// comparisons against unknown roles always fail closed.
func (s SecretariaRole) Level() int {
	return secretariaRoleLevels[s]
}

// ParseSecretariaRole converts raw input into a SecretariaRole.
func ParseSecretariaRole(value string) (SecretariaRole, error) {
	for _, candidate := range validSecretariaRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid secretaria role %q", value)
}
