package commands

import "testing"

func TestRegistry_FindByAlias(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&RmCmd{}); err != nil {
		t.Fatalf("register: %v", err)
	}

	cmd, ok := r.Find("delete")
	if !ok || cmd.Name() != "rm" {
		t.Errorf("expected alias to resolve to rm, got %v %v", cmd, ok)
	}
	if _, ok := r.Find("remove"); ok {
		t.Error("unexpected command for unknown name")
	}
}

func TestRegistry_RejectsClash(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&EditCmd{}); err != nil {
		t.Fatalf("register: %v", err)
	}

	// "update" is an alias of edit.
	clash := &aliasCmd{HelpCmd: HelpCmd{}, aliases: []string{"update"}}
	if err := r.Register(clash); err == nil {
		t.Fatal("expected alias clash to be rejected")
	}
	if _, ok := r.Find("help"); ok {
		t.Error("rejected command must not be partially registered")
	}
}

func TestRegistry_AllSortedAndUnique(t *testing.T) {
	r := NewRegistry()
	for _, c := range []Command{&VersionCmd{}, &ListCmd{}, &EditCmd{}} {
		if err := r.Register(c); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	var names []string
	for _, c := range r.All() {
		names = append(names, c.Name())
	}
	want := []string{"edit", "list", "version"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("expected %v, got %v", want, names)
			break
		}
	}
}

type aliasCmd struct {
	HelpCmd
	aliases []string
}

func (c *aliasCmd) Aliases() []string { return c.aliases }
