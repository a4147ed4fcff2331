package plugins

import (
	"strconv"
	"time"

	"github.com/dop251/goja"
	"github.com/pkg/errors"
	"github.com/shishobooks/shoka/pkg/metadata"
	"github.com/shishobooks/shoka/pkg/models"
)

// parsePatch maps the object returned by plugin.extract to a patch. A
// property that is missing or undefined is absent and null clears the
// field.
func parsePatch(vm *goja.Runtime, val goja.Value) (*metadata.BookPatch, error) {
	if isMissing(val) {
		return nil, nil
	}
	obj := val.ToObject(vm)

	p := &metadata.BookPatch{
		Title:            stringField(obj, "title"),
		Summary:          stringField(obj, "summary"),
		Number:           stringField(obj, "number"),
		NumberSort:       floatField(obj, "numberSort"),
		ReadingDirection: stringField(obj, "readingDirection"),
		Publisher:        stringField(obj, "publisher"),
		AgeRating:        intField(obj, "ageRating"),
		Tags:             stringArrayField(vm, obj, "tags"),
	}

	var err error
	if p.ReleaseDate, err = dateField(obj, "releaseDate"); err != nil {
		return nil, err
	}
	p.Authors = authorsField(vm, obj, "authors")

	seriesVal := obj.Get("series")
	if !isMissing(seriesVal) {
		seriesObj := seriesVal.ToObject(vm)
		p.Series = &metadata.SeriesPatch{
			Status:    stringField(seriesObj, "status"),
			Title:     stringField(seriesObj, "title"),
			TitleSort: stringField(seriesObj, "titleSort"),
		}
	}

	return p, nil
}

// property returns the value of name and whether the property is set at
// all. A property holding undefined counts as unset.
func property(obj *goja.Object, name string) (goja.Value, bool) {
	val := obj.Get(name)
	if val == nil || goja.IsUndefined(val) {
		return nil, false
	}
	return val, true
}

func field[T any](obj *goja.Object, name string, convert func(goja.Value) T) metadata.Field[T] {
	val, ok := property(obj, name)
	if !ok {
		return metadata.Absent[T]()
	}
	if goja.IsNull(val) {
		return metadata.Null[T]()
	}
	return metadata.Value(convert(val))
}

func stringField(obj *goja.Object, name string) metadata.Field[string] {
	return field(obj, name, func(v goja.Value) string { return v.String() })
}

func floatField(obj *goja.Object, name string) metadata.Field[float64] {
	return field(obj, name, func(v goja.Value) float64 { return v.ToFloat() })
}

func intField(obj *goja.Object, name string) metadata.Field[int] {
	return field(obj, name, func(v goja.Value) int { return int(v.ToInteger()) })
}

// dateField reads an ISO 8601 date or date-time string.
func dateField(obj *goja.Object, name string) (metadata.Field[time.Time], error) {
	val, ok := property(obj, name)
	if !ok {
		return metadata.Absent[time.Time](), nil
	}
	if goja.IsNull(val) {
		return metadata.Null[time.Time](), nil
	}
	s := val.String()
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return metadata.Value(t), nil
		}
	}
	return metadata.Field[time.Time]{}, errors.Errorf("%s %q is not an ISO 8601 date", name, s)
}

func stringArrayField(vm *goja.Runtime, obj *goja.Object, name string) metadata.Field[[]string] {
	return field(obj, name, func(v goja.Value) []string {
		out := []string{}
		forEachItem(vm, v, func(item goja.Value) {
			out = append(out, item.String())
		})
		return out
	})
}

// authorsField reads an array of {name, role} objects.
func authorsField(vm *goja.Runtime, obj *goja.Object, name string) metadata.Field[[]models.Author] {
	return field(obj, name, func(v goja.Value) []models.Author {
		out := []models.Author{}
		forEachItem(vm, v, func(item goja.Value) {
			itemObj := item.ToObject(vm)
			author := models.Author{}
			if name, ok := property(itemObj, "name"); ok && !goja.IsNull(name) {
				author.Name = name.String()
			}
			if role, ok := property(itemObj, "role"); ok && !goja.IsNull(role) {
				author.Role = role.String()
			}
			out = append(out, author)
		})
		return out
	})
}

// forEachItem calls fn for every set element of a JS array.
func forEachItem(vm *goja.Runtime, val goja.Value, fn func(goja.Value)) {
	obj := val.ToObject(vm)
	length := obj.Get("length")
	if isMissing(length) {
		return
	}
	for i := int64(0); i < length.ToInteger(); i++ {
		item := obj.Get(strconv.FormatInt(i, 10))
		if isMissing(item) {
			continue
		}
		fn(item)
	}
}
