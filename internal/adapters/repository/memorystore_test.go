package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/jessebenson/numl/internal/adapters/repository"
	"github.com/jessebenson/numl/internal/domain/model"
	"github.com/jessebenson/numl/internal/domain/role"
	"github.com/jessebenson/numl/internal/domain/schema"
)

var _ repository.Store = (*repository.MemoryStore)(nil)

func buildSchema(t *testing.T, name string) *schema.Schema {
	t.Helper()
	s, err := schema.NewBuilder().Build(context.Background(), name, []schema.Field{
		{Name: "Age", Type: model.Number(), Role: role.Feature()},
		{Name: "Outcome", Type: model.String(), Role: role.StringLabel()},
	})
	if err != nil {
		t.Fatalf("build %s: %v", name, err)
	}
	return s
}

func TestMemoryStore(t *testing.T) {
	Convey("Given an empty memory store", t, func() {
		ctx := context.Background()
		fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		store := repository.NewMemoryStore(repository.WithClock(func() time.Time { return fixed }))

		So(store.Count(ctx), ShouldEqual, 0)

		Convey("When a schema is registered", func() {
			e, err := store.Put(ctx, buildSchema(t, "Member"), "member.yaml")

			Convey("Then the entry carries an ID and timestamp", func() {
				So(err, ShouldBeNil)
				_, perr := uuid.Parse(e.ID)
				So(perr, ShouldBeNil)
				So(e.Name, ShouldEqual, "Member")
				So(e.Source, ShouldEqual, "member.yaml")
				So(e.RegisteredAt, ShouldEqual, fixed)
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then it can be looked up by name", func() {
				got, err := store.Get(ctx, "Member")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, e.ID)
				So(got.Schema.Len(), ShouldEqual, 2)
			})

			Convey("Then registering the same name again fails", func() {
				_, err := store.Put(ctx, buildSchema(t, "Member"), "")
				So(errors.Is(err, repository.ErrAlreadyRegistered), ShouldBeTrue)
				So(store.Count(ctx), ShouldEqual, 1)
			})

			Convey("Then deleting it empties the store", func() {
				So(store.Delete(ctx, "Member"), ShouldBeNil)
				_, err := store.Get(ctx, "Member")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				list, _ := store.List(ctx)
				So(list, ShouldBeEmpty)
			})
		})

		Convey("When several schemas are registered out of order", func() {
			for _, name := range []string{"Order", "Account", "Member"} {
				_, err := store.Put(ctx, buildSchema(t, name), "")
				So(err, ShouldBeNil)
			}
			list, err := store.List(ctx)

			Convey("Then List is sorted by name", func() {
				So(err, ShouldBeNil)
				So(len(list), ShouldEqual, 3)
				So(list[0].Name, ShouldEqual, "Account")
				So(list[1].Name, ShouldEqual, "Member")
				So(list[2].Name, ShouldEqual, "Order")
			})
		})

		Convey("When looking up or deleting unknown names", func() {
			_, err := store.Get(ctx, "Nope")
			derr := store.Delete(ctx, "Nope")

			Convey("Then ErrNotFound is returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(errors.Is(derr, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When putting a nil schema", func() {
			_, err := store.Put(ctx, nil, "")
			So(errors.Is(err, repository.ErrInvalidSchema), ShouldBeTrue)
		})
	})

	Convey("Given a store that allows replacement", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(repository.WithReplace(true))

		first, err := store.Put(ctx, buildSchema(t, "Member"), "v1")
		So(err, ShouldBeNil)
		second, err := store.Put(ctx, buildSchema(t, "Member"), "v2")
		So(err, ShouldBeNil)

		Convey("Then the newer entry wins", func() {
			got, err := store.Get(ctx, "Member")
			So(err, ShouldBeNil)
			So(got.ID, ShouldEqual, second.ID)
			So(got.ID, ShouldNotEqual, first.ID)
			So(got.Source, ShouldEqual, "v2")
			So(store.Count(ctx), ShouldEqual, 1)
		})
	})
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	schemas := make([]*schema.Schema, 50)
	for i := range schemas {
		schemas[i] = buildSchema(t, fmt.Sprintf("S%02d", i))
	}

	var wg sync.WaitGroup
	for i := range schemas {
		wg.Add(2)
		go func(s *schema.Schema) {
			defer wg.Done()
			if _, err := store.Put(ctx, s, ""); err != nil {
				t.Errorf("put %s: %v", s.Name(), err)
			}
		}(schemas[i])
		go func() {
			defer wg.Done()
			_, _ = store.List(ctx)
		}()
	}
	wg.Wait()

	if n := store.Count(ctx); n != len(schemas) {
		t.Fatalf("expected %d schemas, got %d", len(schemas), n)
	}
	list, _ := store.List(ctx)
	if len(list) != len(schemas) || list[0].Name != "S00" {
		t.Fatalf("unexpected snapshot: %d entries", len(list))
	}
}
