package models

type Project struct {
	ID           int    `json:"id"`
	ReferenceNum string `json:"reference_num"`
	Name         string `json:"name"`
}

// Customer is identified by (name, branch). ReferenceNum is generated
// ("M" + zero-padded counter) when a customer is created implicitly by an import.
type Customer struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Branch       string `json:"branch,omitempty"`
	ReferenceNum string `json:"reference_num,omitempty"`
}

// InventoryLink ties one asset to one (project, customer) pair. AssetID may be
// nil: a link row can be created ahead of time and back-filled later.
type InventoryLink struct {
	ID         int  `json:"id"`
	ProjectID  int  `json:"project_id"`
	CustomerID int  `json:"customer_id"`
	AssetID    *int `json:"asset_id,omitempty"`
}
