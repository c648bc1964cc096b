// Package policy holds the access decision table shared by the services and
// the store's declarative rule layer.
package policy

import "github.com/maheshrc27/editorial-api/internal/models"

type Action string

const (
	ActionRead       Action = "read"
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionTransition Action = "transition"
	ActionDelete     Action = "delete"
	ActionRespond    Action = "respond"
)

var Actions = []Action{ActionRead, ActionCreate, ActionUpdate, ActionTransition, ActionDelete, ActionRespond}

type ResourceType string

const (
	ResourceClient         ResourceType = "client"
	ResourcePost           ResourceType = "post"
	ResourceContentRequest ResourceType = "content_request"
	ResourceComment        ResourceType = "comment"
	ResourceUser           ResourceType = "user"
)

var ResourceTypes = []ResourceType{ResourceClient, ResourcePost, ResourceContentRequest, ResourceComment, ResourceUser}

// Rule grants Action on Resource to Roles. From restricts the current status,
// To names the requested status of a transition and Fields bounds the set of
// content fields an update may touch. Empty From/Fields mean unrestricted.
type Rule struct {
	Resource ResourceType          `json:"resource"`
	Action   Action                `json:"action"`
	Roles    []models.Role         `json:"roles"`
	From     []models.PostStatus   `json:"from,omitempty"`
	To       models.PostStatus     `json:"to,omitempty"`
	Fields   []models.ContentField `json:"fields,omitempty"`
}

var (
	allRoles  = []models.Role{models.RoleAdmin, models.RoleManager, models.RoleCreative, models.RoleProduction, models.RoleClient}
	leads     = []models.Role{models.RoleAdmin, models.RoleManager}
	adminOnly = []models.Role{models.RoleAdmin}

	openStatuses = []models.PostStatus{
		models.PostStatusDraft,
		models.PostStatusPendingApproval,
		models.PostStatusApproved,
		models.PostStatusFinished,
	}
)

func edge(from, to models.PostStatus, roles ...models.Role) Rule {
	return Rule{
		Resource: ResourcePost,
		Action:   ActionTransition,
		Roles:    roles,
		From:     []models.PostStatus{from},
		To:       to,
	}
}

// table is the single source of truth. Client-role subjects are additionally
// restricted to resources owned by their assigned client.
var table = []Rule{
	{Resource: ResourceClient, Action: ActionRead, Roles: allRoles},
	{Resource: ResourceClient, Action: ActionCreate, Roles: leads},
	{Resource: ResourceClient, Action: ActionUpdate, Roles: leads},
	{Resource: ResourceClient, Action: ActionDelete, Roles: leads},

	{Resource: ResourcePost, Action: ActionRead, Roles: allRoles},
	{Resource: ResourcePost, Action: ActionCreate, Roles: []models.Role{models.RoleAdmin, models.RoleManager, models.RoleCreative}},
	{Resource: ResourcePost, Action: ActionDelete, Roles: adminOnly},

	{Resource: ResourcePost, Action: ActionUpdate, Roles: leads, From: openStatuses,
		Fields: models.ContentFields},
	{Resource: ResourcePost, Action: ActionUpdate, Roles: []models.Role{models.RoleCreative},
		From:   []models.PostStatus{models.PostStatusDraft, models.PostStatusPendingApproval},
		Fields: []models.ContentField{models.FieldScript, models.FieldCaption}},
	{Resource: ResourcePost, Action: ActionUpdate, Roles: []models.Role{models.RoleProduction},
		From:   []models.PostStatus{models.PostStatusDraft, models.PostStatusPendingApproval, models.PostStatusApproved},
		Fields: []models.ContentField{models.FieldAssetLink}},

	edge(models.PostStatusDraft, models.PostStatusPendingApproval, models.RoleAdmin, models.RoleManager, models.RoleCreative),
	edge(models.PostStatusPendingApproval, models.PostStatusDraft, leads...),
	edge(models.PostStatusPendingApproval, models.PostStatusApproved, leads...),
	edge(models.PostStatusPendingApproval, models.PostStatusRejected, leads...),
	edge(models.PostStatusApproved, models.PostStatusFinished, models.RoleAdmin, models.RoleManager, models.RoleProduction),
	edge(models.PostStatusApproved, models.PostStatusDraft, leads...),
	edge(models.PostStatusApproved, models.PostStatusRejected, leads...),
	edge(models.PostStatusFinished, models.PostStatusClientApproved, models.RoleAdmin, models.RoleManager, models.RoleClient),
	edge(models.PostStatusFinished, models.PostStatusClientRejected, models.RoleAdmin, models.RoleManager, models.RoleClient),

	{Resource: ResourceContentRequest, Action: ActionRead, Roles: allRoles},
	{Resource: ResourceContentRequest, Action: ActionCreate, Roles: []models.Role{models.RoleAdmin, models.RoleManager, models.RoleClient}},
	{Resource: ResourceContentRequest, Action: ActionRespond, Roles: leads},

	{Resource: ResourceComment, Action: ActionRead, Roles: allRoles},
	{Resource: ResourceComment, Action: ActionCreate, Roles: allRoles},

	{Resource: ResourceUser, Action: ActionRead, Roles: adminOnly},
	{Resource: ResourceUser, Action: ActionCreate, Roles: adminOnly},
	{Resource: ResourceUser, Action: ActionUpdate, Roles: adminOnly},
	{Resource: ResourceUser, Action: ActionDelete, Roles: adminOnly},
}

// Rules returns a copy of the decision table.
func Rules() []Rule {
	out := make([]Rule, len(table))
	copy(out, table)
	return out
}

type Edge struct {
	From models.PostStatus
	To   models.PostStatus
}

// Edges lists the state graph implied by the transition rules, in table order.
func Edges() []Edge {
	var edges []Edge
	for _, r := range table {
		if r.Action != ActionTransition {
			continue
		}
		for _, from := range r.From {
			edges = append(edges, Edge{From: from, To: r.To})
		}
	}
	return edges
}
