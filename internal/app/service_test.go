package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/jessebenson/numl/internal/adapters/exclusion"
	"github.com/jessebenson/numl/internal/adapters/repository"
	service "github.com/jessebenson/numl/internal/app"
	"github.com/jessebenson/numl/internal/domain/model"
	"github.com/jessebenson/numl/internal/domain/role"
	"github.com/jessebenson/numl/internal/domain/schema"
	"github.com/jessebenson/numl/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

const definitions = `
records:
  - name: Member
    fields:
      - {name: Age, type: number, role: feature}
      - {name: City, type: string, role: string-feature, exclusions: cities.txt}
      - {name: Joined, type: date, role: date-feature, portion: date}
      - {name: Tags, type: "sequence<number>", role: enumerable-feature, length: 5}
      - {name: Outcome, type: string, role: string-label}
  - name: Order
    fields:
      - {name: Total, type: number, role: feature}
      - {name: Returned, type: bool, role: label}
`

const broken = `
records:
  - name: Good
    fields:
      - {name: A, type: number, role: feature}
  - name: Bad
    fields:
      - {name: Tags, type: "sequence<number>", role: enumerable-feature, length: 0}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

type taggedMember struct {
	Age     int    `numl:"feature"`
	Outcome string `numl:"stringlabel"`
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.GetStats()["started"], ShouldEqual, false)
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("Then every operation reports it", func() {
			_, err := svc.Schemas(ctx)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Lookup(ctx, "Member")
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			_, err = svc.Register(ctx, "Member", nil)
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}

func TestService_Start(t *testing.T) {
	Convey("Given a service with a definition file", t, func() {
		dir := t.TempDir()
		writeFile(t, dir, "cities.txt", "the\nof\n")
		path := writeFile(t, dir, "records.yaml", definitions)

		svc := service.New(
			service.WithSchemaPaths(path),
			service.WithExclusionDir(dir),
		)
		// Ensure service is stopped after test
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When starting the service", func() {
			err := svc.Start(ctx)

			Convey("Then every record is registered", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["schemas"], ShouldEqual, 2)

				list, err := svc.Schemas(ctx)
				So(err, ShouldBeNil)
				So(list[0].Name, ShouldEqual, "Member")
				So(list[0].Descriptors, ShouldEqual, 5)
				So(list[0].Labels, ShouldResemble, []string{"Outcome"})
				So(list[1].Name, ShouldEqual, "Order")
			})

			Convey("Then exclusions are read from the exclusion directory", func() {
				So(err, ShouldBeNil)
				got, err := svc.Lookup(ctx, "Member")
				So(err, ShouldBeNil)
				So(got.Source, ShouldEqual, path)
				So(got.Descriptors[1].Exclusions, ShouldEqual, 2)
			})

			Convey("Then starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
			})
		})
	})

	Convey("Given a definition file with one invalid record", t, func() {
		path := writeFile(t, t.TempDir(), "broken.yaml", broken)
		store := repository.NewMemoryStore()
		svc := service.New(service.WithSchemaPaths(path), service.WithStore(store))

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then it fails and registers nothing from the file", func() {
				So(errors.Is(err, role.ErrInvalidConfiguration), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "Tags")
				So(store.Count(context.Background()), ShouldEqual, 0)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

// flakyStore fails every Put for one schema name.
type flakyStore struct {
	repository.Store
	failOn string
}

func (f *flakyStore) Put(ctx context.Context, s *schema.Schema, source string) (repository.Entry, error) {
	if s.Name() == f.failOn {
		return repository.Entry{}, errors.New("store unavailable")
	}
	return f.Store.Put(ctx, s, source)
}

func TestService_StartAllOrNothing(t *testing.T) {
	const first = `
records:
  - name: Member
    fields:
      - {name: Age, type: number, role: feature}
`
	const second = `
records:
  - name: Extra
    fields:
      - {name: Total, type: number, role: feature}
  - name: Member
    fields:
      - {name: Score, type: number, role: label}
`
	Convey("Given two files that declare the same record", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		a := writeFile(t, dir, "a.yaml", first)
		b := writeFile(t, dir, "b.yaml", second)
		store := repository.NewMemoryStore()
		svc := service.New(service.WithSchemaPaths(a, b), service.WithStore(store))

		Convey("When starting the service", func() {
			err := svc.Start(ctx)

			Convey("Then it fails and no file leaves anything registered", func() {
				So(errors.Is(err, repository.ErrAlreadyRegistered), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "b.yaml")
				So(store.Count(ctx), ShouldEqual, 0)
				_, err = store.Get(ctx, "Extra")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})

			Convey("Then a retry after fixing the file succeeds", func() {
				writeFile(t, dir, "b.yaml", "records:\n  - name: Extra\n    fields:\n      - {name: Total, type: number, role: feature}\n")
				So(svc.Start(ctx), ShouldBeNil)
				So(store.Count(ctx), ShouldEqual, 2)
			})
		})
	})

	Convey("Given a record already registered in the store", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		existing, err := schema.NewBuilder().Build(ctx, "Member", []schema.Field{
			{Name: "Age", Type: model.Number(), Role: role.Feature()},
		})
		So(err, ShouldBeNil)
		_, err = store.Put(ctx, existing, "api")
		So(err, ShouldBeNil)

		path := writeFile(t, t.TempDir(), "a.yaml", first)
		svc := service.New(service.WithSchemaPaths(path), service.WithStore(store))

		Convey("When a file declares it again", func() {
			err := svc.Start(ctx)

			Convey("Then Start fails and the existing entry is untouched", func() {
				So(errors.Is(err, repository.ErrAlreadyRegistered), ShouldBeTrue)
				e, err := store.Get(ctx, "Member")
				So(err, ShouldBeNil)
				So(e.Source, ShouldEqual, "api")
			})
		})
	})

	Convey("Given a replacing store that fails part way through", t, func() {
		ctx := context.Background()
		inner := repository.NewMemoryStore(repository.WithReplace(true))
		existing, err := schema.NewBuilder().Build(ctx, "Member", []schema.Field{
			{Name: "Age", Type: model.Number(), Role: role.Feature()},
		})
		So(err, ShouldBeNil)
		_, err = inner.Put(ctx, existing, "api")
		So(err, ShouldBeNil)

		dir := t.TempDir()
		a := writeFile(t, dir, "a.yaml", first)
		b := writeFile(t, dir, "b.yaml", "records:\n  - name: Boom\n    fields:\n      - {name: X, type: number, role: feature}\n")
		svc := service.New(
			service.WithSchemaPaths(a, b),
			service.WithReplace(true),
			service.WithStore(&flakyStore{Store: inner, failOn: "Boom"}),
		)

		Convey("When starting the service", func() {
			err := svc.Start(ctx)

			Convey("Then the replaced entry is restored", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "store unavailable")
				So(inner.Count(ctx), ShouldEqual, 1)
				e, err := inner.Get(ctx, "Member")
				So(err, ShouldBeNil)
				So(e.Source, ShouldEqual, "api")
				So(e.Schema.Equal(existing), ShouldBeTrue)
			})
		})
	})
}

func TestService_Register(t *testing.T) {
	Convey("Given a started service with a static importer", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithImporter(exclusion.Map{"stop": {"a", "the"}}))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When registering field declarations", func() {
			got, err := svc.Register(ctx, "Doc", []schema.Field{
				{Name: "Body", Type: model.String(), Role: role.StringFeature(role.WithExclusions("stop"))},
				{Name: "Spam", Type: model.Bool(), Role: role.Label()},
			})

			Convey("Then the wire form is returned", func() {
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "Doc")
				So(got.ID, ShouldNotBeEmpty)
				So(len(got.Descriptors), ShouldEqual, 2)
				So(got.Descriptors[0].Exclusions, ShouldEqual, 2)
			})

			Convey("Then Describe returns the built schema", func() {
				sc, err := svc.Describe(ctx, "Doc")
				So(err, ShouldBeNil)
				So(sc.Len(), ShouldEqual, 2)
			})

			Convey("Then registering the name again is rejected", func() {
				_, err := svc.Register(ctx, "Doc", []schema.Field{
					{Name: "Body", Type: model.String(), Role: role.Feature()},
				})
				So(errors.Is(err, repository.ErrAlreadyRegistered), ShouldBeTrue)
			})

			Convey("Then it can be unregistered", func() {
				So(svc.Unregister(ctx, "Doc"), ShouldBeNil)
				_, err := svc.Lookup(ctx, "Doc")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When registering a tagged struct without a name", func() {
			got, err := svc.RegisterStruct(ctx, "", &taggedMember{})

			Convey("Then the type name is used", func() {
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "taggedMember")
				So(len(got.Descriptors), ShouldEqual, 2)
			})
		})

		Convey("When the declarations are invalid", func() {
			_, err := svc.Register(ctx, "Bad", []schema.Field{
				{Name: "When", Type: model.Number(), Role: role.DatePortionFeature(0)},
			})

			Convey("Then the schema error is returned", func() {
				var serr *schema.Error
				So(errors.As(err, &serr), ShouldBeTrue)
				_, lerr := svc.Lookup(ctx, "Bad")
				So(errors.Is(lerr, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_Stop(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := svc.Start(ctx)
		So(err, ShouldBeNil)

		Convey("When stopping the service", func() {
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, false)
			})
		})
	})
}
