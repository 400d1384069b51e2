package keys

// Invalidation groups list what each kind of write stales. Writers call
// these after their write has committed and hand the result to the cache.

// OnMasterWrite covers create/update/delete of one master-data list.
func OnMasterWrite(master Region) []Region {
	return []Region{master}
}

// OnMenuWrite covers any menu change. Every role's sidebar is built from
// menus, so the whole sidebar family goes along with the menu list.
func OnMenuWrite() []Region {
	return []Region{AllAccessSidebars, MenusMaster}
}

// OnPermissionWrite covers a permission change for one role.
func OnPermissionWrite(roleID string) []Region {
	return []Region{AccessPermissions(roleID), AccessSidebar(roleID)}
}

// OnRoleWrite covers creating, renaming or deleting a role.
func OnRoleWrite() []Region {
	return []Region{RolesMaster, AllAccessPermissions, AllAccessSidebars}
}

// OnDraftWrite covers saving or discarding an email draft.
func OnDraftWrite(emailID string) []Region {
	return []Region{DraftEmail(emailID)}
}

// OnEntityWrite covers writes to an entity with cached list pages.
func OnEntityWrite(entity string) []Region {
	return []Region{AllListPages(entity)}
}
