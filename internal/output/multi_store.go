package output

import (
	"context"
	"errors"
	"path"
	"path/filepath"
)

// Tee writes every artifact to a primary store and mirrors it to the others.
// The location returned is the primary one.
type Tee struct {
	Primary ArtifactStore
	Mirrors []ArtifactStore
}

func (t Tee) Put(ctx context.Context, name string, content []byte) (string, error) {
	loc, err := t.Primary.Put(ctx, name, content)
	if err != nil {
		return "", err
	}
	var errs []error
	for _, m := range t.Mirrors {
		if _, err := m.Put(ctx, name, content); err != nil {
			errs = append(errs, err)
		}
	}
	return loc, errors.Join(errs...)
}

func (t Tee) Remove(ctx context.Context, name string) error {
	errs := []error{t.Primary.Remove(ctx, name)}
	for _, m := range t.Mirrors {
		errs = append(errs, m.Remove(ctx, name))
	}
	return errors.Join(errs...)
}

// Prefixed stores every artifact under dir, keeping same-named modules of
// different packages apart.
type Prefixed struct {
	Store ArtifactStore
	Dir   string
}

func (p Prefixed) name(n string) string {
	if p.Dir == "" || p.Dir == "." {
		return n
	}
	return path.Join(filepath.ToSlash(p.Dir), n)
}

func (p Prefixed) Put(ctx context.Context, name string, content []byte) (string, error) {
	return p.Store.Put(ctx, p.name(name), content)
}

func (p Prefixed) Remove(ctx context.Context, name string) error {
	return p.Store.Remove(ctx, p.name(name))
}
