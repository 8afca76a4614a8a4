package types_test

import (
	"context"
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/jessebenson/numl/internal/domain/model"
	"github.com/jessebenson/numl/internal/domain/property"
	"github.com/jessebenson/numl/internal/domain/role"
	"github.com/jessebenson/numl/internal/domain/schema"
	types "github.com/jessebenson/numl/internal/domain/types"
)

func TestDescriptors(t *testing.T) {
	Convey("Given a built schema", t, func() {
		s, err := schema.NewBuilder().Build(context.Background(), "Member", []schema.Field{
			{Name: "Age", Type: model.Number(), Role: role.Feature()},
			{Name: "City", Type: model.String(), Role: role.StringFeature()},
			{Name: "Joined", Type: model.DateTime(), Role: role.DatePortionFeature(property.Date)},
			{Name: "Tags", Type: model.SequenceOf(model.KindNumber), Role: role.EnumerableFeature(5)},
			{Name: "Outcome", Type: model.String(), Role: role.StringLabel()},
		})
		So(err, ShouldBeNil)

		Convey("When converting to wire form", func() {
			ds := types.NewDescriptors(s)

			Convey("Then each variant carries only its own settings", func() {
				So(len(ds), ShouldEqual, 5)

				So(ds[0].Kind, ShouldEqual, property.KindNumeric.String())
				So(ds[0].Separator, ShouldBeNil)
				So(ds[0].Length, ShouldEqual, 0)

				So(ds[1].Split, ShouldEqual, "word")
				So(*ds[1].Separator, ShouldEqual, " ")
				So(*ds[1].Enum, ShouldBeFalse)

				So(ds[2].Portion, ShouldEqual, "date")
				So(ds[2].Features, ShouldResemble, property.Date.Features().Names())

				So(ds[3].Length, ShouldEqual, 5)
				So(ds[3].Type, ShouldEqual, "sequence<number>")

				So(ds[4].Label, ShouldBeTrue)
				So(*ds[4].Enum, ShouldBeTrue)
			})

			Convey("Then the JSON omits unset settings", func() {
				raw, err := json.Marshal(ds[0])
				So(err, ShouldBeNil)
				var m map[string]any
				So(json.Unmarshal(raw, &m), ShouldBeNil)
				So(m, ShouldContainKey, "name")
				So(m, ShouldNotContainKey, "separator")
				So(m, ShouldNotContainKey, "length")
			})
		})

		Convey("Then LabelNames lists the label fields", func() {
			So(types.LabelNames(s), ShouldResemble, []string{"Outcome"})
		})
	})
}
