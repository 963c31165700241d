package resolver

import (
	"context"
	"testing"

	"github.com/Velocidex/ordereddict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/objectfilter/types"
)

type dummyDll struct {
	Name              string
	ImportedFunctions []string
}

func (d dummyDll) NumImportedFunctions() int { return len(d.ImportedFunctions) }

type dummyFile struct {
	Name          string
	Size          int
	ImportedDlls  []dummyDll
	Callable      func() string
	DeferredChan  chan types.Any
}

func newResolver() *DefaultResolver { return NewDefaultResolver(nil) }

func TestResolveStructField(t *testing.T) {
	r := newResolver()
	f := &dummyFile{Name: "yay.exe", Size: 10}
	res := r.Resolve(context.Background(), f, "name")
	require.True(t, res.Present)
	assert.Equal(t, "yay.exe", res.Value)
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	r := newResolver()
	f := &dummyFile{Name: "yay.exe"}
	lower := r.Resolve(context.Background(), f, "name")
	upper := r.Resolve(context.Background(), f, "Name")
	assert.Equal(t, lower, upper)
}

func TestResolveMethodGetter(t *testing.T) {
	r := newResolver()
	d := dummyDll{Name: "a.dll", ImportedFunctions: []string{"FindWindow", "CreateFileA"}}
	res := r.Resolve(context.Background(), d, "numimportedfunctions")
	require.True(t, res.Present)
	assert.Equal(t, 2, res.Value)
}

func TestResolveRefusesBareFunc(t *testing.T) {
	r := newResolver()
	f := &dummyFile{Callable: func() string { return "x" }}
	res := r.Resolve(context.Background(), f, "callable")
	assert.False(t, res.Present)
}

func TestResolveMissingMemberIsAbsent(t *testing.T) {
	r := newResolver()
	f := &dummyFile{Name: "yay.exe"}
	res := r.Resolve(context.Background(), f, "nonexistent")
	assert.False(t, res.Present)
}

func TestResolveSliceIsSequence(t *testing.T) {
	r := newResolver()
	f := &dummyFile{ImportedDlls: []dummyDll{{Name: "a.dll"}, {Name: "b.dll"}}}
	res := r.Resolve(context.Background(), f, "importeddlls")
	require.True(t, res.Present)
	require.True(t, res.IsSeq)

	var names []string
	for {
		v, ok := res.Seq.Next(context.Background())
		if !ok {
			break
		}
		names = append(names, v.(dummyDll).Name)
	}
	assert.Equal(t, []string{"a.dll", "b.dll"}, names)
}

func TestResolveChanIsSequence(t *testing.T) {
	r := newResolver()
	ch := make(chan types.Any, 2)
	ch <- "a"
	ch <- "b"
	close(ch)
	f := &dummyFile{DeferredChan: ch}
	res := r.Resolve(context.Background(), f, "deferredchan")
	require.True(t, res.Present)
	require.True(t, res.IsSeq)
	got := types.Materialize(context.Background(), res.Seq)
	assert.Equal(t, []types.Any{"a", "b"}, got)
}

func TestResolveOrderedDict(t *testing.T) {
	r := newResolver()
	dict := ordereddict.NewDict().Set("Name", "yay.exe").Set("Size", 10)
	res := r.Resolve(context.Background(), dict, "name")
	require.True(t, res.Present)
	assert.Equal(t, "yay.exe", res.Value)
}

func TestResolveNilHostIsAbsent(t *testing.T) {
	r := newResolver()
	res := r.Resolve(context.Background(), nil, "name")
	assert.False(t, res.Present)
}

func TestExpanderFansOutThenTerminal(t *testing.T) {
	r := newResolver()
	e := NewExpander(r)
	f := &dummyFile{ImportedDlls: []dummyDll{
		{Name: "a.dll", ImportedFunctions: []string{"FindWindow"}},
		{Name: "b.dll", ImportedFunctions: []string{"RegQueryValueEx"}},
	}}

	groups := e.Expand(context.Background(), f, []string{"importeddlls", "name"})
	require.Len(t, groups, 2)
	assert.Equal(t, "a.dll", groups[0].Value)
	assert.Equal(t, "b.dll", groups[1].Value)
}

func TestExpanderMissingIntermediateYieldsNoGroups(t *testing.T) {
	r := newResolver()
	e := NewExpander(r)
	f := &dummyFile{}
	groups := e.Expand(context.Background(), f, []string{"nonexistent", "name"})
	assert.Len(t, groups, 0)
}
