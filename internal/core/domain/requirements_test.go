package domain

import (
	"reflect"
	"testing"
)

func TestRequiredDocumentsByPermitAndProject(t *testing.T) {
	tests := []struct {
		name        string
		permitType  PermitType
		projectType ProjectType
		want        []DocumentCategory
	}{
		{
			name:        "residential electrical",
			permitType:  PermitElectrical,
			projectType: ProjectResidential,
			want: []DocumentCategory{
				CategoryApplicationForm, CategoryPropertyDeed, CategoryHomeownerID,
				CategoryElectricalPlans, CategorySitePlan,
			},
		},
		{
			name:        "commercial building",
			permitType:  PermitBuilding,
			projectType: ProjectCommercial,
			want: []DocumentCategory{
				CategoryApplicationForm, CategoryPropertyDeed, CategoryContractorLicense,
				CategoryArchitecturalDrawing, CategorySitePlan, CategoryStructuralPlans,
			},
		},
		{
			name:        "residential demolition",
			permitType:  PermitDemolition,
			projectType: ProjectResidential,
			want: []DocumentCategory{
				CategoryApplicationForm, CategoryPropertyDeed, CategoryHomeownerID,
				CategorySitePlan, CategoryPropertySurvey,
			},
		},
		{
			name:        "zoning on industrial project",
			permitType:  PermitZoning,
			projectType: ProjectIndustrial,
			want: []DocumentCategory{
				CategoryApplicationForm, CategoryPlotPlan, CategoryPropertySurvey,
			},
		},
		{
			name:        "unlisted permit type falls back to site plan",
			permitType:  PermitSign,
			projectType: ProjectMixedUse,
			want: []DocumentCategory{
				CategoryApplicationForm, CategorySitePlan,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequiredDocuments(tt.permitType, tt.projectType)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("RequiredDocuments(%s, %s) = %v, want %v",
					tt.permitType, tt.projectType, got, tt.want)
			}
		})
	}
}

func TestRequiredDocumentsIsDeterministic(t *testing.T) {
	first := RequiredDocuments(PermitBuilding, ProjectResidential)
	second := RequiredDocuments(PermitBuilding, ProjectResidential)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same inputs produced different sets: %v vs %v", first, second)
	}
}

func TestValidProjectAndPermitTypes(t *testing.T) {
	if !ValidProjectType(ProjectMixedUse) {
		t.Fatalf("mixed_use must be a valid project type")
	}
	if ValidProjectType("agricultural") {
		t.Fatalf("unknown project type must be invalid")
	}
	if !ValidPermitType(PermitGrading) {
		t.Fatalf("grading must be a valid permit type")
	}
	if ValidPermitType("fence") {
		t.Fatalf("unknown permit type must be invalid")
	}
}
