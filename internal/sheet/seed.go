package sheet

import "slices"

// seedRows is what a fresh store starts with.
var seedRows = []Row{
	{
		ID:          1,
		JobRequest:  "Q3 Financial Overview",
		Submitted:   "30-11-2024",
		Status:      StatusInProgress,
		Submitter:   "Asha Patel",
		URL:         "www.ashapatel.com",
		Assignee:    "Sophie Choudhury",
		Priority:    PriorityMedium,
		DueDate:     "20-11-2024",
		Budget:      "6,200,000",
		EstValue:    "5,800,000",
		CreatedBy:   "asha@company.com",
		Description: "Complete quarterly financial analysis and reporting",
	},
	{
		ID:          2,
		JobRequest:  "Launch marketing campaign for product",
		Submitted:   "28-10-2024",
		Status:      StatusNeedToStart,
		Submitter:   "Irfan Khan",
		URL:         "www.irfankhan.com",
		Assignee:    "Nisha Pandey",
		Priority:    PriorityHigh,
		DueDate:     "30-10-2024",
		Budget:      "3,500,000",
		EstValue:    "4,200,000",
		CreatedBy:   "irfan@company.com",
		Description: "Design and execute comprehensive marketing strategy",
	},
	{
		ID:          3,
		JobRequest:  "Update user interface feedback for app",
		Submitted:   "26-10-2024",
		Status:      StatusSubmitted,
		Submitter:   "Maria Martinez",
		URL:         "www.mariamartinez.com",
		Assignee:    "Rachel Lee",
		Priority:    PriorityMedium,
		DueDate:     "10-12-2024",
		Budget:      "4,750,000",
		EstValue:    "4,500,000",
		CreatedBy:   "maria@company.com",
		Description: "Collect and implement user feedback for UI improvements",
	},
	{
		ID:          4,
		JobRequest:  "Update news list for company redesign",
		Submitted:   "01-01-2025",
		Status:      StatusComplete,
		Submitter:   "Emily Green",
		URL:         "www.emilygreen.com",
		Assignee:    "Tom Wright",
		Priority:    PriorityLow,
		DueDate:     "15-01-2025",
		Budget:      "6,200,000",
		EstValue:    "6,000,000",
		CreatedBy:   "emily@company.com",
		Description: "Redesign company news section with modern layout",
	},
	{
		ID:          5,
		JobRequest:  "Design new features for the website",
		Submitted:   "25-01-2025",
		Status:      StatusBlocked,
		Submitter:   "Jessica Brown",
		URL:         "www.jessicabrown.com",
		Assignee:    "Kevin Smith",
		Priority:    PriorityLow,
		DueDate:     "30-01-2025",
		Budget:      "2,800,000",
		EstValue:    "3,100,000",
		CreatedBy:   "jessica@company.com",
		Description: "Create wireframes and prototypes for new website features",
	},
}

// SeedRows returns a copy of the rows a new store is initialised with.
func SeedRows() []Row {
	return slices.Clone(seedRows)
}
