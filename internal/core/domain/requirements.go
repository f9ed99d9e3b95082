package domain

// permitTechnicalPlans maps each permit type to the technical plan set the
// reviewing municipality expects. Unlisted permit types fall back to a site
// plan only.
var permitTechnicalPlans = map[PermitType][]DocumentCategory{
	PermitBuilding:   {CategoryArchitecturalDrawing, CategorySitePlan, CategoryStructuralPlans},
	PermitElectrical: {CategoryElectricalPlans, CategorySitePlan},
	PermitPlumbing:   {CategoryPlumbingPlans, CategorySitePlan},
	PermitMechanical: {CategoryMechanicalPlans, CategorySitePlan},
	PermitDemolition: {CategorySitePlan, CategoryPropertySurvey},
	PermitZoning:     {CategoryPlotPlan, CategoryPropertySurvey},
}

// RequiredDocuments computes the ordered set of document categories an
// application must provide. Pure and deterministic: the application form is
// always first, ownership/identity paperwork depends on the project type,
// technical plans on the permit type.
func RequiredDocuments(permitType PermitType, projectType ProjectType) []DocumentCategory {
	required := []DocumentCategory{CategoryApplicationForm}

	switch projectType {
	case ProjectResidential:
		required = append(required, CategoryPropertyDeed, CategoryHomeownerID)
	case ProjectCommercial:
		required = append(required, CategoryPropertyDeed, CategoryContractorLicense)
	}

	plans, ok := permitTechnicalPlans[permitType]
	if !ok {
		plans = []DocumentCategory{CategorySitePlan}
	}
	for _, plan := range plans {
		if !contains(required, plan) {
			required = append(required, plan)
		}
	}

	return required
}

// ValidProjectType reports whether v names a supported project type.
func ValidProjectType(v ProjectType) bool {
	switch v {
	case ProjectResidential, ProjectCommercial, ProjectIndustrial, ProjectMixedUse:
		return true
	default:
		return false
	}
}

// ValidPermitType reports whether v names a supported permit type.
func ValidPermitType(v PermitType) bool {
	switch v {
	case PermitBuilding, PermitElectrical, PermitPlumbing, PermitMechanical,
		PermitDemolition, PermitZoning, PermitSign, PermitGrading:
		return true
	default:
		return false
	}
}

func contains(set []DocumentCategory, c DocumentCategory) bool {
	for _, v := range set {
		if v == c {
			return true
		}
	}
	return false
}
