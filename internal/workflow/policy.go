package workflow

// policy is the centralized (role, kind, action) permission table. The UI
// layer previously scattered role checks across call sites; the engine
// consults only this table.
var policy = map[Kind]map[Action][]Role{
	KindPreAuditItem: {
		ActionStartReview:    {RoleAuditManager},
		ActionForward:        {RoleAuditManager},
		ActionApprove:        {RoleAuditManager, RoleDirector},
		ActionReturn:         {RoleAuditManager},
		ActionReject:         {RoleAuditManager, RoleDirector},
		ActionAddObservation: {RoleAuditManager, RoleDirector},
		ActionRespond:        {RoleRequester, RoleProcurementOfficer},
		ActionResolve:        {RoleAuditManager, RoleDirector},
		ActionResubmit:       {RoleRequester, RoleProcurementOfficer},
	},
	KindPurchaseOrder: {
		ActionSendToAudit:          {RoleRequester, RoleProcurementOfficer},
		ActionAuditApprove:         {RoleAuditManager},
		ActionAuditReturn:          {RoleAuditManager},
		ActionAuditReject:          {RoleAuditManager},
		ActionSendToCEOOffice:      {RoleProcurementOfficer, RoleAuditManager},
		ActionForwardToCEO:         {RoleCEOSecretariat},
		ActionCEOApprove:           {RoleCEO},
		ActionCEOReturn:            {RoleCEO},
		ActionCEOSecretariatReturn: {RoleCEOSecretariat},
		ActionCEOSecretariatReject: {RoleCEOSecretariat},
		ActionSendToStore:          {RoleProcurementOfficer},
		ActionRecordGRN:            {RoleStoreKeeper},
		ActionSendToProcurement:    {RoleStoreKeeper},
		ActionSendToPostGRNAudit:   {RoleProcurementOfficer},
		ActionSendToFinance:        {RoleFinanceOfficer, RoleProcurementOfficer},
		ActionCancel:               {RoleRequester, RoleProcurementOfficer},
		ActionApprove:              {RoleAuditManager, RoleCEO},
		ActionReturn:               {RoleAuditManager, RoleCEO, RoleCEOSecretariat},
		ActionReject:               {RoleAuditManager, RoleCEO, RoleCEOSecretariat},
		ActionAddObservation:       {RoleAuditManager, RoleCEOSecretariat, RoleCEO},
		ActionRespond:              {RoleRequester, RoleProcurementOfficer},
		ActionResolve:              {RoleAuditManager, RoleCEOSecretariat, RoleCEO},
	},
	KindPaymentSettlement: {
		ActionForwardToCEO:   {RoleCEOSecretariat},
		ActionApprove:        {RoleCEO},
		ActionReturn:         {RoleCEO, RoleCEOSecretariat},
		ActionReject:         {RoleCEO, RoleCEOSecretariat},
		ActionAddObservation: {RoleCEOSecretariat, RoleCEO, RoleAuditManager},
		ActionRespond:        {RoleFinanceOfficer},
		ActionResolve:        {RoleCEOSecretariat, RoleCEO},
		ActionResubmit:       {RoleFinanceOfficer},
	},
}

// Allowed reports whether role may perform action on documents of kind.
// super_admin is permitted everywhere.
func Allowed(role Role, kind Kind, action Action) bool {
	if role == RoleSuperAdmin {
		return true
	}
	for _, r := range policy[kind][action] {
		if r == role {
			return true
		}
	}
	return false
}
