package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/gridwatch/solarcast/internal/store"
)

// LocationForm carries the raw form input for creating or editing a location.
// Coordinates stay strings until validation has confirmed they parse.
type LocationForm struct {
	Name           string `validate:"required,max=100"`
	Latitude       string `validate:"required,latitude"`
	Longitude      string `validate:"required,longitude"`
	APIKey         string `validate:"omitempty,max=100"`
	GridSubstation string `validate:"omitempty,max=100"`
	FeederNumber   string `validate:"omitempty,max=50"`
}

// parseLocationForm extracts a LocationForm from a submitted request.
func parseLocationForm(r *http.Request) (LocationForm, error) {
	if err := r.ParseForm(); err != nil {
		return LocationForm{}, err
	}
	return LocationForm{
		Name:           r.PostFormValue("name"),
		Latitude:       r.PostFormValue("latitude"),
		Longitude:      r.PostFormValue("longitude"),
		APIKey:         r.PostFormValue("api_key"),
		GridSubstation: r.PostFormValue("grid_substation"),
		FeederNumber:   r.PostFormValue("feeder_number"),
	}, nil
}

// formFromLocation pre-fills the form with an existing location's fields.
func formFromLocation(loc store.Location) LocationForm {
	return LocationForm{
		Name:           loc.Name,
		Latitude:       strconv.FormatFloat(loc.Latitude, 'f', -1, 64),
		Longitude:      strconv.FormatFloat(loc.Longitude, 'f', -1, 64),
		APIKey:         loc.APIKey,
		GridSubstation: loc.GridSubstation,
		FeederNumber:   loc.FeederNumber,
	}
}

// Validate checks the form and returns one message per failed field. An empty
// map means the form is valid. Validation runs before any persistence.
func (f LocationForm) Validate(v *validator.Validate) map[string]string {
	err := v.Struct(f)
	if err == nil {
		return map[string]string{}
	}

	fieldErrors := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fieldErrors["form"] = "invalid input"
		return fieldErrors
	}

	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fieldErrors[fe.Field()] = "is required"
		case "latitude":
			fieldErrors[fe.Field()] = "must be a valid latitude in decimal degrees"
		case "longitude":
			fieldErrors[fe.Field()] = "must be a valid longitude in decimal degrees"
		case "max":
			fieldErrors[fe.Field()] = "is too long (max " + fe.Param() + " characters)"
		default:
			fieldErrors[fe.Field()] = "is invalid"
		}
	}
	return fieldErrors
}

// Model converts a validated form into a Location. Must only be called after
// Validate reported no errors.
func (f LocationForm) Model() (store.Location, error) {
	lat, err := strconv.ParseFloat(f.Latitude, 64)
	if err != nil {
		return store.Location{}, err
	}
	lng, err := strconv.ParseFloat(f.Longitude, 64)
	if err != nil {
		return store.Location{}, err
	}
	return store.Location{
		Name:           f.Name,
		APIKey:         f.APIKey,
		Latitude:       lat,
		Longitude:      lng,
		GridSubstation: f.GridSubstation,
		FeederNumber:   f.FeederNumber,
	}, nil
}
