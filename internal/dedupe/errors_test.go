package dedupe

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnostics_Collects(t *testing.T) {
	d := NewDiagnostics()
	d.Addf("slot %s full", "email")
	d.AddError("move candidates", errors.New("boom"))
	d.AddError("ignored", nil)

	assert.Equal(t, 2, d.Len())
	assert.Equal(t, []string{"slot email full", "move candidates: boom"}, d.Messages())
	assert.Equal(t, "slot email full; move candidates: boom", d.String())
}

func TestDiagnostics_NilDiscards(t *testing.T) {
	var d *Diagnostics
	d.Addf("x")
	d.AddError("op", errors.New("y"))
	assert.Zero(t, d.Len())
	assert.Nil(t, d.Messages())
	assert.Empty(t, d.String())
}

func TestDiagnostics_ConcurrentAdds(t *testing.T) {
	d := NewDiagnostics()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Addf("entry %d", i)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, d.Len())
}

func TestExclusion(t *testing.T) {
	e := NewExclusion("a", "", "b", "a")
	e.Add("c", "b")

	assert.Equal(t, []string{"a", "b", "c"}, e.IDs())
	assert.Equal(t, 3, e.Len())
	assert.True(t, e.Contains("c"))
	assert.False(t, e.Contains(""))

	var nilSet *Exclusion
	assert.False(t, nilSet.Contains("a"))
	assert.Nil(t, nilSet.IDs())
	assert.Zero(t, nilSet.Len())
}
