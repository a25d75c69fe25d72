package catalog

import (
	"path/filepath"
	"testing"
	"time"
)

// testCatalog opens a catalog in a temp directory with a fixed clock and
// predictable IDs, and closes it when the test finishes.
func testCatalog(t *testing.T, ids ...string) *Catalog {
	t.Helper()

	if len(ids) == 0 {
		ids = []string{"id-1", "id-2", "id-3", "id-4"}
	}

	c, err := Open(
		filepath.Join(t.TempDir(), "catalog.db"),
		WithClock(FixedClock{T: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}),
		WithIDGenerator(NewFixedIDGenerator(ids...)),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

const minimalQueryXML = `<query view="Gene.symbol Gene.length"/>`

const constraintQueryXML = `<query view="Gene.symbol" sortOrder="Gene.symbol asc">
	<constraint path="Gene.symbol" op="ONE OF" code="A">
		<value>eve</value>
		<value>zen</value>
	</constraint>
</query>`
