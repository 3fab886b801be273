package catalog

// Checklist configuration. Per-checkpoint maxima must sum exactly to the
// area ceiling in every variant; classification downstream divides by these
// ceilings, so the sums are load-bearing and pinned by tests.
//
// Area ceilings: 30/40/15/15 with placement, 35/45/20 without — the vacated
// 15 placement points are redistributed per center-type family, not by a
// uniform formula.

type areaDef struct {
	name        AreaName
	total       float64
	applicable  bool
	checkpoints []Checkpoint
}

func variantFor(centerType CenterType, placementApplicable bool) [4]areaDef {
	if centerType == CenterDTV {
		if placementApplicable {
			return dtvWithPlacement
		}
		return dtvNoPlacement
	}
	// CDC and SDC share one family.
	if placementApplicable {
		return cdcWithPlacement
	}
	return cdcNoPlacement
}

func cp(id, name string, max float64) Checkpoint {
	return Checkpoint{ID: id, Name: name, Weightage: max, MaxScore: max}
}

var placementArea = areaDef{
	name:       AreaPlacement,
	total:      15,
	applicable: true,
	checkpoints: []Checkpoint{
		cp("PP1", "Placement tracker maintenance", 5),
		cp("PP2", "Employer engagement records", 5),
		cp("PP3", "Post-placement follow-up records", 5),
	},
}

var placementNA = areaDef{name: AreaPlacement, total: 0, applicable: false}

var cdcWithPlacement = [4]areaDef{
	{
		name: AreaFrontOffice, total: 30, applicable: true,
		checkpoints: []Checkpoint{
			cp("FO1", "Enquiry and counselling register", 9),
			cp("FO2", "Admission forms and documentation", 6),
			cp("FO3", "Fee receipts and refund records", 6),
			cp("FO4", "Course and batch schedule display", 5),
			cp("FO5", "Grievance register upkeep", 4),
		},
	},
	{
		name: AreaDeliveryProcess, total: 40, applicable: true,
		checkpoints: []Checkpoint{
			cp("DP1", "Batch freeze and start documentation", 6),
			cp("DP2", "Trainee attendance records", 6),
			cp("DP3", "Session plan adherence", 6),
			cp("DP4", "Trainer certification and eligibility", 5),
			cp("DP5", "Assessment and test records", 6),
			cp("DP6", "Trainee feedback collection", 5),
			cp("DP7", "Course completion and certification records", 6),
		},
	},
	placementArea,
	{
		name: AreaManagement, total: 15, applicable: true,
		checkpoints: []Checkpoint{
			cp("MP1", "Statutory licenses and center records", 4),
			cp("MP2", "Staff records and payroll register", 4),
			cp("MP3", "Asset and infrastructure register", 4),
			cp("MP4", "Biometric attendance availability", 3),
		},
	},
}

var cdcNoPlacement = [4]areaDef{
	{
		name: AreaFrontOffice, total: 35, applicable: true,
		checkpoints: []Checkpoint{
			cp("FO1", "Enquiry and counselling register", 10),
			cp("FO2", "Admission forms and documentation", 7),
			cp("FO3", "Fee receipts and refund records", 7),
			cp("FO4", "Course and batch schedule display", 6),
			cp("FO5", "Grievance register upkeep", 5),
		},
	},
	{
		name: AreaDeliveryProcess, total: 45, applicable: true,
		checkpoints: []Checkpoint{
			cp("DP1", "Batch freeze and start documentation", 7),
			cp("DP2", "Trainee attendance records", 7),
			cp("DP3", "Session plan adherence", 7),
			cp("DP4", "Trainer certification and eligibility", 5),
			cp("DP5", "Assessment and test records", 7),
			cp("DP6", "Trainee feedback collection", 5),
			cp("DP7", "Course completion and certification records", 7),
		},
	},
	placementNA,
	{
		name: AreaManagement, total: 20, applicable: true,
		checkpoints: []Checkpoint{
			cp("MP1", "Statutory licenses and center records", 5),
			cp("MP2", "Staff records and payroll register", 5),
			cp("MP3", "Asset and infrastructure register", 6),
			cp("MP4", "Biometric attendance availability", 4),
		},
	},
}

var dtvWithPlacement = [4]areaDef{
	{
		name: AreaFrontOffice, total: 30, applicable: true,
		checkpoints: []Checkpoint{
			cp("FO1", "Enquiry and counselling register", 8),
			cp("FO2", "Admission forms and documentation", 6),
			cp("FO3", "Fee receipts and refund records", 6),
			cp("FO4", "Course and batch schedule display", 6),
			cp("FO5", "Grievance register upkeep", 4),
		},
	},
	{
		name: AreaDeliveryProcess, total: 40, applicable: true,
		checkpoints: []Checkpoint{
			cp("DP1", "Batch freeze and start documentation", 6),
			cp("DP2", "Trainee attendance records", 5),
			cp("DP3", "Session plan adherence", 6),
			cp("DP4", "Trainer certification and eligibility", 6),
			cp("DP5", "Assessment and test records", 6),
			cp("DP6", "Trainee feedback collection", 5),
			cp("DP7", "Course completion and certification records", 6),
		},
	},
	placementArea,
	{
		// DTV management runs five checkpoints and tracks the van fleet
		// (genset/vehicle log) instead of biometric availability.
		name: AreaManagement, total: 15, applicable: true,
		checkpoints: []Checkpoint{
			cp("MP1", "Statutory licenses and center records", 3),
			cp("MP2", "Staff records and payroll register", 3),
			cp("MP3", "Asset and infrastructure register", 3),
			cp("MP4", "Genset and vehicle log book", 3),
			cp("MP5", "Mobile unit movement plan", 3),
		},
	},
}

var dtvNoPlacement = [4]areaDef{
	{
		name: AreaFrontOffice, total: 35, applicable: true,
		checkpoints: []Checkpoint{
			cp("FO1", "Enquiry and counselling register", 9),
			cp("FO2", "Admission forms and documentation", 7),
			cp("FO3", "Fee receipts and refund records", 7),
			cp("FO4", "Course and batch schedule display", 7),
			cp("FO5", "Grievance register upkeep", 5),
		},
	},
	{
		name: AreaDeliveryProcess, total: 45, applicable: true,
		checkpoints: []Checkpoint{
			cp("DP1", "Batch freeze and start documentation", 7),
			cp("DP2", "Trainee attendance records", 6),
			cp("DP3", "Session plan adherence", 7),
			cp("DP4", "Trainer certification and eligibility", 6),
			cp("DP5", "Assessment and test records", 7),
			cp("DP6", "Trainee feedback collection", 5),
			cp("DP7", "Course completion and certification records", 7),
		},
	},
	placementNA,
	{
		name: AreaManagement, total: 20, applicable: true,
		checkpoints: []Checkpoint{
			cp("MP1", "Statutory licenses and center records", 4),
			cp("MP2", "Staff records and payroll register", 4),
			cp("MP3", "Asset and infrastructure register", 4),
			cp("MP4", "Genset and vehicle log book", 4),
			cp("MP5", "Mobile unit movement plan", 4),
		},
	},
}
