// Package kernel holds the shared building blocks every bounded context
// depends on: typed identifiers, the request auth context and pagination.
package kernel

type UserID string

func NewUserID(id string) UserID { return UserID(id) }
func (u UserID) String() string  { return string(u) }
func (u UserID) IsEmpty() bool   { return string(u) == "" }

type JobID string

func NewJobID(id string) JobID { return JobID(id) }
func (j JobID) String() string { return string(j) }
func (j JobID) IsEmpty() bool  { return string(j) == "" }

type CategoryID string

func NewCategoryID(id string) CategoryID { return CategoryID(id) }
func (c CategoryID) String() string      { return string(c) }
func (c CategoryID) IsEmpty() bool       { return string(c) == "" }

type ApplicationID string

func NewApplicationID(id string) ApplicationID { return ApplicationID(id) }
func (a ApplicationID) String() string         { return string(a) }
func (a ApplicationID) IsEmpty() bool          { return string(a) == "" }
