package runtime

import (
	"encoding/json"
	"fmt"

	"github.com/Jembe/jembe-sub000/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

const globalsKey = "removeComponents"

// DecodeResponse parses a response body: an ordered list of component records,
// where an entry carrying removeComponents is the globals record.
func DecodeResponse(body []byte) (*domain.Response, error) {
	var entries []map[string]any
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}

	resp := &domain.Response{}
	for i, raw := range entries {
		if _, ok := raw[globalsKey]; ok {
			var globals domain.GlobalsRecord
			if err := decode(raw, &globals); err != nil {
				return nil, fmt.Errorf("%w: entry %d: %w", domain.ErrMalformedResponse, i, err)
			}
			resp.Remove = append(resp.Remove, globals.RemoveComponents...)
			continue
		}

		var rec domain.ComponentRecord
		if err := decode(raw, &rec); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", domain.ErrMalformedResponse, i, err)
		}
		if err := domain.ValidateExecName(rec.ExecName); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", domain.ErrMalformedResponse, i, err)
		}
		resp.Components = append(resp.Components, rec)
	}
	return resp, nil
}

// DecodeComponentData parses a jmb-data attribute.
func DecodeComponentData(raw string) (domain.ComponentData, error) {
	var data domain.ComponentData
	if raw == "" {
		return data, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return data, err
	}
	err := decode(m, &data)
	return data, err
}

func decode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
