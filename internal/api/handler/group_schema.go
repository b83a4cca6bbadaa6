package handler

type createGroupRequest struct {
	GroupName string   `json:"groupName" validate:"required,max=64"`
	Members   []string `json:"members"   validate:"required,min=1"`
}

type addUserRequest struct {
	// The web client posts the group id under "_id", matching the document
	// shape it holds.
	GroupID string   `json:"_id"     validate:"required"`
	Members []string `json:"members" validate:"required,min=1"`
}

type removeUserRequest struct {
	GroupID string `json:"groupId" validate:"required"`
	UserID  string `json:"userId"  validate:"required"`
}

type addUserResponse struct {
	Added int `json:"added"`
	Group any `json:"group"`
}
