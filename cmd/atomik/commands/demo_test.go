package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MatthewHRockwell/atomik-sub001/internal/validate"
)

func TestDomainListIsAlphabeticalAndIncludesEveryCuratedSchema(t *testing.T) {
	list := domainList()
	assert.Equal(t, "network, sensor, terminal", list)
	for name := range curatedSchemas {
		assert.Contains(t, list, name)
	}
}

func TestCuratedDemoSchemasValidate(t *testing.T) {
	for domain, schemaJSON := range curatedSchemas {
		t.Run(domain, func(t *testing.T) {
			sch, errs := validate.Validate([]byte(schemaJSON))
			assert.Empty(t, errs, "curated schema %q should validate", domain)
			assert.NotNil(t, sch)
		})
	}
}
