package vms

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"

	"github.com/sevahub/volunteer-shortlister/internal/volunteer"
)

const (
	VolunteersPath = "/volunteers"
)

// ListParams narrow down the volunteer listing on the server side.
type ListParams struct {
	Search string `yaml:"search"`
	// vmsparam is custom tag for reflect. Please see below.
	Statuses     []string `vmsparam:"status"`
	Skills       string   `yaml:"skills"`
	Availability string   `yaml:"availability"`
	PerPage      string   `yaml:"per_page" mapstructure:"per_page"`
}

// GetVolunteers fetches all volunteer records matching the params.
func (c *Client) GetVolunteers(params *ListParams) (*volunteer.Volunteers, error) {
	var volunteers []*volunteer.Volunteer

	if params == nil {
		params = &ListParams{}
	}

	// Set per_page max as possible. It should be faster.
	if params.PerPage == "" {
		params.PerPage = perPage
	}

	q := buildParams(params)
	apiURLList := fmt.Sprintf("%s%s", c.APIURL, VolunteersPath)

	items, err := c.GetItems(apiURLList, q)
	if err != nil {
		return nil, err
	}

	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &volunteers,
		TagName:  "json",
	}
	decoder, _ := mapstructure.NewDecoder(cfg)
	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decoding volunteer items: %w", err)
	}

	return &volunteer.Volunteers{
		Items: volunteers,
	}, nil
}

func buildParams(params *ListParams) url.Values {
	q := url.Values{}
	fields := reflect.VisibleFields(reflect.TypeOf(*params))
	for _, field := range fields {
		// Our custom tag is using here.
		key := field.Tag.Get("vmsparam")
		if key == "" {
			// Failover to default tag if our tag do not exist.
			key = field.Tag.Get("yaml")
		}
		kind := field.Type.Kind()
		switch kind {
		case reflect.Slice:
			s := reflect.ValueOf(params).Elem().Field(field.Index[0]).Interface()
			switch v := s.(type) {
			case []int:
				for _, value := range v {
					q.Add(key, strconv.Itoa(value))
				}

			case []string:
				for _, value := range v {
					q.Add(key, value)
				}
			}

		default:
			value := fmt.Sprintf("%v", reflect.ValueOf(params).Elem().Field(field.Index[0]).Interface())
			if value != "" && value != "0" {
				q.Set(key, value)
			}
		}
	}

	return q
}
