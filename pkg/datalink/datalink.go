//go:generate mockgen -destination=./mocks/datalink.go -package=mocks . Querier

// Package datalink describes the secondary "datalink" service contract used to
// resolve additional access locations for rows of a data product. Only the
// service description and the query contract live here; the transport that
// executes the call is an external collaborator.
package datalink

import "context"

const (
	// ServiceID is the identifier of the ad-hoc service carrying cloud links.
	ServiceID = "cloudlinks"

	// SourceParam is the input parameter enumerating the selectable sources.
	SourceParam = "source"

	// MainServerAlias is a legacy source option meaning on-prem access. It is
	// always skipped: prem coverage comes from the baseline access point.
	MainServerAlias = "main-server"
)

// Option is one selectable value of an enumerated input parameter.
type Option struct {
	Description string `json:"description"`
	Value       string `json:"value"`
}

// Param is one declared input parameter of a datalink service.
type Param struct {
	Name    string   `json:"name"`
	Ref     string   `json:"ref,omitempty"` // id of the column this parameter joins against
	Options []Option `json:"options,omitempty"`
}

// Service is the declared description of a datalink service.
type Service struct {
	ID          string  `json:"id"`
	InputParams []Param `json:"input_params"`
}

// Param returns the declared input parameter with the given name.
func (s *Service) Param(name string) (*Param, bool) {
	for i := range s.InputParams {
		if s.InputParams[i].Name == name {
			return &s.InputParams[i], true
		}
	}
	return nil, false
}

// RefColumn returns the column id the service joins result rows against.
// It is the ref of the first input parameter that declares one.
func (s *Service) RefColumn() (string, bool) {
	for _, p := range s.InputParams {
		if p.Ref != "" {
			return p.Ref, true
		}
	}
	return "", false
}

// Row is one entry of a datalink query result.
type Row struct {
	ID        string
	AccessURL string
}

// Querier executes one datalink call for a chosen source option and returns
// the resolved rows. Implementations own the wire protocol; the discovery
// pipeline only consumes the result table.
type Querier interface {
	Query(ctx context.Context, svc *Service, source string) ([]Row, error)
}
