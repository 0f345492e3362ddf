package matcher

// vulnClass describes one vulnerability family: the service tags it maps to,
// the keywords that indicate it in free text, and the severity it usually
// lands at. Order matters: earlier classes win tie-breaks in inferred output.
type vulnClass struct {
	Name     string
	Tags     []string
	Keywords []string
	Severity string
}

var vulnClasses = []vulnClass{
	{
		Name:     "reentrancy",
		Tags:     []string{"Reentrancy", "CEI", "External Call"},
		Keywords: []string{"reentrancy", "re-entrancy", "callback", "external call", "receive()"},
		Severity: "HIGH",
	},
	{
		Name:     "access_control",
		Tags:     []string{"Access Control", "Authentication", "Admin", "Authorization"},
		Keywords: []string{"access control", "onlyowner", "auth", "permission", "unauthorized"},
		Severity: "CRITICAL",
	},
	{
		Name:     "oracle",
		Tags:     []string{"Oracle", "Price Manipulation", "TWAP", "Price Feed"},
		Keywords: []string{"oracle", "price", "manipulation", "spot price", "chainlink"},
		Severity: "HIGH",
	},
	{
		Name:     "flash_loan",
		Tags:     []string{"Flash Loan", "Price Manipulation"},
		Keywords: []string{"flash loan", "flashloan", "atomic"},
		Severity: "HIGH",
	},
	{
		Name:     "rounding",
		Tags:     []string{"Rounding", "Precision", "Decimals", "Division"},
		Keywords: []string{"rounding", "precision", "division before", "decimals"},
		Severity: "MEDIUM",
	},
	{
		Name:     "overflow",
		Tags:     []string{"Overflow", "Underflow", "SafeMath"},
		Keywords: []string{"overflow", "underflow", "safemath", "unchecked"},
		Severity: "HIGH",
	},
	{
		Name:     "delegatecall",
		Tags:     []string{"Delegatecall", "Proxy", "DELEGATECALL"},
		Keywords: []string{"delegatecall", "delegate call", "proxy"},
		Severity: "CRITICAL",
	},
	{
		Name:     "signature",
		Tags:     []string{"Signature", "ECDSA", "EIP-712", "ecrecover"},
		Keywords: []string{"signature", "ecdsa", "ecrecover", "replay"},
		Severity: "HIGH",
	},
	{
		Name:     "frontrunning",
		Tags:     []string{"Frontrunning", "MEV", "Sandwich"},
		Keywords: []string{"frontrun", "mev", "sandwich", "front-run"},
		Severity: "MEDIUM",
	},
	{
		Name:     "dos",
		Tags:     []string{"DOS", "Gas Limit", "Denial-Of-Service", "DoS"},
		Keywords: []string{"dos", "denial", "gas limit", "unbounded loop"},
		Severity: "MEDIUM",
	},
	{
		Name:     "timestamp",
		Tags:     []string{"Timestamp", "block.timestamp", "Time"},
		Keywords: []string{"timestamp", "block.timestamp", "time manipulation"},
		Severity: "MEDIUM",
	},
	{
		Name:     "randomness",
		Tags:     []string{"Randomness", "Cryptography", "Predictable"},
		Keywords: []string{"random", "predictable", "blockhash", "weak randomness"},
		Severity: "HIGH",
	},
	{
		Name:     "approval",
		Tags:     []string{"Approve", "Allowance", "ERC20"},
		Keywords: []string{"approve", "allowance", "approve max"},
		Severity: "MEDIUM",
	},
	{
		Name:     "collateral",
		Tags:     []string{"Collateral", "Liquidation", "Lending"},
		Keywords: []string{"collateral", "liquidation", "lending", "borrow"},
		Severity: "HIGH",
	},
	{
		Name:     "governance",
		Tags:     []string{"Governance", "Voting", "Timelock", "Proposal"},
		Keywords: []string{"governance", "voting", "proposal", "timelock"},
		Severity: "HIGH",
	},
}

// DefaultSeverity returns the usual severity for a named vulnerability class,
// or "" when the class is unknown.
func DefaultSeverity(class string) string {
	for _, vc := range vulnClasses {
		if vc.Name == class {
			return vc.Severity
		}
	}
	return ""
}
