package workspacehandler

type CreateWorkspaceBody struct {
	Name   string `json:"name"   binding:"required" example:"demo"`
	Secret string `json:"secret" binding:"required" example:"demo"`
} // @name CreateWorkspaceRequest

type WorkspaceResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
} // @name WorkspaceResponse

type HealthResponse struct {
	Ok bool `json:"ok"`
} // @name HealthResponse

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse
