// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"
	"slices"

	"github.com/go-a2a/coord"
)

// requiredCustomsDocuments must all be present for a shipment to clear
// customs.
var requiredCustomsDocuments = []string{
	"commercial_invoice",
	"packing_list",
	"certificate_of_origin",
}

// freeTradeDestinations are destination countries that need no
// additional compliance review.
var freeTradeDestinations = []string{"US", "CA", "MX"}

// ValidateCustomsDocumentation checks a document list against the
// customs requirements and reports any missing documents.
func ValidateCustomsDocumentation(ctx context.Context, payload map[string]any) (map[string]any, error) {
	rawDocs, ok := payload["documents"]
	if !ok {
		return nil, fmt.Errorf("missing required parameter: documents")
	}
	docList, ok := rawDocs.([]any)
	if !ok {
		return nil, fmt.Errorf("parameter documents must be an array")
	}

	provided := make([]string, 0, len(docList))
	for _, d := range docList {
		if s, ok := d.(string); ok {
			provided = append(provided, s)
		}
	}

	missing := []string{}
	for _, required := range requiredCustomsDocuments {
		if !slices.Contains(provided, required) {
			missing = append(missing, required)
		}
	}

	return map[string]any{
		"valid":             len(missing) == 0,
		"missing_documents": missing,
		"provided_count":    len(provided),
		"required_count":    len(requiredCustomsDocuments),
	}, nil
}

// CheckComplianceStatus evaluates a shipment for regulatory issues and
// warnings.
func CheckComplianceStatus(ctx context.Context, payload map[string]any) (map[string]any, error) {
	destination := stringArg(payload, "destination_country", "")
	if destination == "" {
		return nil, fmt.Errorf("missing required parameter: destination_country")
	}
	hazmat, _ := payload["contains_hazmat"].(bool)

	issues := []string{}
	warnings := []string{}

	if hazmat {
		issues = append(issues, "hazardous materials require special handling certification")
	}
	if !slices.Contains(freeTradeDestinations, destination) {
		warnings = append(warnings, fmt.Sprintf("destination %s requires additional export review", destination))
	}

	return map[string]any{
		"compliant":           len(issues) == 0,
		"destination_country": destination,
		"issues":              issues,
		"warnings":            warnings,
	}, nil
}

// NewSupplyChainRegistry builds a Registry pre-loaded with the
// built-in shipping and compliance tools.
func NewSupplyChainRegistry() *Registry {
	r := NewRegistry()

	r.Register(Definition{
		Name:        "calculate_shipping_cost",
		Description: "Calculate the cost of shipping a package based on weight, distance and service level",
		Parameters: map[string]coord.ParamType{
			"weight_kg":     coord.ParamTypeNumber,
			"distance_km":   coord.ParamTypeNumber,
			"service_level": coord.ParamTypeString,
		},
		Category: "logistics",
	}, CalculateShippingCost)

	r.Register(Definition{
		Name:        "estimate_delivery_time",
		Description: "Estimate delivery time in days based on distance and service level",
		Parameters: map[string]coord.ParamType{
			"distance_km":   coord.ParamTypeNumber,
			"service_level": coord.ParamTypeString,
		},
		Category: "logistics",
	}, EstimateDeliveryTime)

	r.Register(Definition{
		Name:        "optimize_route",
		Description: "Optimize the order of delivery stops for a route",
		Parameters: map[string]coord.ParamType{
			"stops": coord.ParamTypeArray,
		},
		Category: "logistics",
	}, OptimizeRoute)

	r.Register(Definition{
		Name:        "track_shipment",
		Description: "Track the current status and location of a shipment",
		Parameters: map[string]coord.ParamType{
			"tracking_number": coord.ParamTypeString,
		},
		Category: "logistics",
	}, TrackShipment)

	r.Register(Definition{
		Name:        "validate_customs_documentation",
		Description: "Validate that a shipment has all required customs documents",
		Parameters: map[string]coord.ParamType{
			"documents": coord.ParamTypeArray,
		},
		Category: "compliance",
	}, ValidateCustomsDocumentation)

	r.Register(Definition{
		Name:        "check_compliance_status",
		Description: "Check a shipment for regulatory compliance issues",
		Parameters: map[string]coord.ParamType{
			"destination_country": coord.ParamTypeString,
			"contains_hazmat":     coord.ParamTypeBoolean,
		},
		Category: "compliance",
	}, CheckComplianceStatus)

	return r
}
