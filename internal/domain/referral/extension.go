package referral

import (
	"github.com/durvester/referral-loop-closure/internal/platform/fhir"
)

// TargetExtensionURL is the extension carrying a referral's destination
// identifiers when a referral crosses the FHIR boundary as a ServiceRequest.
const TargetExtensionURL = "https://referral-loop.example.com/fhir/StructureDefinition/referral-target"

const (
	extOrganizationNPI  = "organizationNpi"
	extOrganizationName = "organizationName"
	extPractitionerNPI  = "practitionerNpi"
	extSpecialty        = "specialty"
)

// EncodeTargetExtension renders the referral's target identifiers as a nested
// FHIR extension. Unset fields are omitted; a referral with no target at all
// yields a nil extension.
func EncodeTargetExtension(r *Referral) *fhir.Extension {
	var nested []fhir.Extension
	if r.TargetOrgNPI != nil {
		nested = append(nested, fhir.Extension{URL: extOrganizationNPI, ValueString: *r.TargetOrgNPI})
	}
	if r.TargetOrgName != nil {
		nested = append(nested, fhir.Extension{URL: extOrganizationName, ValueString: *r.TargetOrgName})
	}
	if r.TargetPractitionerNPI != nil {
		nested = append(nested, fhir.Extension{URL: extPractitionerNPI, ValueString: *r.TargetPractitionerNPI})
	}
	if r.TargetSpecialty != nil {
		nested = append(nested, fhir.Extension{URL: extSpecialty, ValueCode: *r.TargetSpecialty})
	}
	if nested == nil {
		return nil
	}
	return &fhir.Extension{URL: TargetExtensionURL, Extension: nested}
}

// DecodeTargetExtension extracts target identifiers from a ServiceRequest's
// extension list. Malformed or missing entries yield absent fields, never an
// error; an unusable target just makes the referral unmatchable downstream.
func DecodeTargetExtension(exts []fhir.Extension) (orgNPI, orgName, practNPI, specialty *string) {
	for _, ext := range exts {
		if ext.URL != TargetExtensionURL {
			continue
		}
		for _, sub := range ext.Extension {
			switch sub.URL {
			case extOrganizationNPI:
				if sub.ValueString != "" {
					v := sub.ValueString
					orgNPI = &v
				}
			case extOrganizationName:
				if sub.ValueString != "" {
					v := sub.ValueString
					orgName = &v
				}
			case extPractitionerNPI:
				if sub.ValueString != "" {
					v := sub.ValueString
					practNPI = &v
				}
			case extSpecialty:
				if v := sub.ValueCode; v != "" {
					specialty = &v
				} else if v := sub.ValueString; v != "" {
					specialty = &v
				}
			}
		}
		return
	}
	return
}

// ToFHIR renders the referral as a FHIR ServiceRequest resource.
func (r *Referral) ToFHIR() map[string]interface{} {
	resource := map[string]interface{}{
		"resourceType": "ServiceRequest",
		"id":           r.ID.String(),
		"status":       "active",
		"intent":       "order",
		"subject":      fhir.Reference{Reference: fhir.FormatReference("Patient", r.PatientID)},
	}
	if r.RequesterRef != "" {
		resource["requester"] = fhir.Reference{Reference: r.RequesterRef}
	}
	if ext := EncodeTargetExtension(r); ext != nil {
		resource["extension"] = []fhir.Extension{*ext}
	}
	if r.WindowStart != nil || r.WindowEnd != nil {
		resource["occurrencePeriod"] = fhir.Period{Start: r.WindowStart, End: r.WindowEnd}
	}
	if r.Reason != "" {
		resource["reasonCode"] = []fhir.CodeableConcept{{Text: r.Reason}}
	}
	return resource
}
