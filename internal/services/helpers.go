package services

import (
	"context"
	"sort"
	"strings"

	"github.com/charlesng35/soiree/internal/models"
	apperrors "github.com/charlesng35/soiree/pkg/errors"
)

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func normaliseIDs(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

// joinRoles renders a role list in storage form: de-duplicated, sorted and
// comma-joined. An empty list yields "".
func joinRoles(roles []string) string {
	ids := normaliseIDs(roles)
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

func requireGuest(caller *models.Guest) error {
	if caller == nil || caller.ID == "" {
		return apperrors.ErrUnauthorized
	}
	return nil
}

func requireAdmin(caller *models.Guest) error {
	if !caller.IsAdmin() {
		return apperrors.ErrUnauthorized
	}
	return nil
}

func normaliseRole(role string) string {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role == "" {
		return models.RoleGuest
	}
	return role
}
