package domain

// Default labels and title decorations used when configuration leaves them empty.
const (
	// DefaultGenerationLabel marks a page as created and owned by this tool.
	DefaultGenerationLabel = "happi-to-confluence"

	// DefaultNoOverwriteLabel is set by operators to veto automatic overwrites.
	DefaultNoOverwriteLabel = "no-overwrite"

	// DefaultPageTitleMarker is appended to generated class page titles.
	DefaultPageTitleMarker = " (Typhos)"

	// DefaultUserPageSuffix is appended to user-editable notes page titles.
	DefaultUserPageSuffix = " - Notes"
)

// Render context keys. Templates refer to these by name.
const (
	KeyIdentifier        = "identifier"
	KeyDeviceName        = "device_name"
	KeyHappiItem         = "happi_item"
	KeyDeviceClass       = "device_class"
	KeyDeviceClassDoc    = "device_class_doc"
	KeyRelevantPVsByKind = "relevant_pvs_by_kind"
	KeyPageTitleMarker   = "page_title_marker"
	KeyUserPageSuffix    = "user_page_suffix"
	KeyRelatedPages      = "related_pages"
	KeyState             = "state"
	KeyItemState         = "item_state"
	KeyConfluenceURL     = "confluence_url"
	KeyAllItemState      = "all_item_state"
	KeyViewState         = "view_state"
	KeyAllItems          = "all_items"
	KeyDocstringSections = "sections"
	KeyDocstringKwargs   = "kwargs"
)
