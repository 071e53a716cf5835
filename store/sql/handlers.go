package sqlstore

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

func overrideHandlers() repository.ModelHandlers[*overrideRecord] {
	return repository.ModelHandlers[*overrideRecord]{
		NewRecord: func() *overrideRecord {
			return &overrideRecord{}
		},
		GetID: func(record *overrideRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *overrideRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "name"
		},
		GetIdentifierValue: func(record *overrideRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.Name)
		},
	}
}

func parseUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
