package huawei

import "github.com/anicoll/huawei-solar-integration/internal/pkg/model"

var gridCodes = map[int]model.GridCode{
	0:  {Standard: "VDE-AR-N-4105", Country: "Germany"},
	1:  {Standard: "NB/T 32004", Country: "China"},
	2:  {Standard: "UTE C 15-712-1(A)", Country: "France"},
	3:  {Standard: "UTE C 15-712-1(B)", Country: "France"},
	4:  {Standard: "UTE C 15-712-1(C)", Country: "France"},
	5:  {Standard: "VDE 0126-1-1-BU", Country: "Bulgaria"},
	6:  {Standard: "VDE 0126-1-1-GR(A)", Country: "Greece"},
	7:  {Standard: "VDE 0126-1-1-GR(B)", Country: "Greece"},
	8:  {Standard: "BDEW-MV", Country: "Germany"},
	9:  {Standard: "G59-England", Country: "UK"},
	10: {Standard: "G59-Scotland", Country: "UK"},
	11: {Standard: "G83-England", Country: "UK"},
	12: {Standard: "G83-Scotland", Country: "UK"},
	13: {Standard: "CEI0-21", Country: "Italy"},
	14: {Standard: "EN50438-CZ", Country: "Czech Republic"},
	15: {Standard: "RD1699/661", Country: "Spain"},
	16: {Standard: "RD1699/661-MV480", Country: "Spain"},
	17: {Standard: "EN50438-NL", Country: "Netherlands"},
	18: {Standard: "C10/11", Country: "Belgium"},
	19: {Standard: "AS4777", Country: "Australia"},
	20: {Standard: "IEC61727", Country: "General"},
	21: {Standard: "Custom (50 Hz)", Country: "Custom"},
	22: {Standard: "Custom (60 Hz)", Country: "Custom"},
	23: {Standard: "CEI0-16", Country: "Italy"},
	24: {Standard: "CHINA-MV480", Country: "China"},
	25: {Standard: "CHINA-MV", Country: "China"},
	26: {Standard: "TAI-PEA", Country: "Thailand"},
	27: {Standard: "TAI-MEA", Country: "Thailand"},
	28: {Standard: "BDEW-MV480", Country: "Germany"},
}

var deviceStatuses = map[int]string{
	0x0000: "Standby: initializing",
	0x0001: "Standby: detecting insulation resistance",
	0x0002: "Standby: detecting irradiation",
	0x0003: "Standby: grid detecting",
	0x0100: "Starting",
	0x0200: "On-grid",
	0x0201: "Grid connection: power limited",
	0x0202: "Grid connection: self-derating",
	0x0300: "Shutdown: fault",
	0x0301: "Shutdown: command",
	0x0302: "Shutdown: OVGR",
	0x0303: "Shutdown: communication disconnected",
	0x0304: "Shutdown: power limited",
	0x0305: "Shutdown: manual startup required",
	0x0306: "Shutdown: DC switches disconnected",
	0x0401: "Grid scheduling: cosphi-P curve",
	0x0402: "Grid scheduling: Q-U curve",
	0x0500: "Spot-check ready",
	0x0501: "Spot-checking",
	0x0600: "Inspecting",
	0x0700: "AFCI self check",
	0x0800: "I-V scanning",
	0x0900: "DC input detection",
	0x0A00: "Running: off-grid charging",
	0xA000: "Standby: no irradiation",
}

var storageStatuses = map[int]string{
	0: "offline",
	1: "standby",
	2: "running",
	3: "fault",
	4: "sleep mode",
}

var storageWorkingModesA = map[int]string{
	0: "adaptive",
	1: "fixed charge/discharge",
	2: "maximise self consumption",
	3: "time of use (LG)",
	4: "fully fed to grid",
	5: "time of use (LUNA2000)",
}

var storageWorkingModesB = map[int]string{
	0: "none",
	1: "forcible charge/discharge",
	2: "time of use (LG)",
	3: "fixed charge/discharge",
	4: "maximise self consumption",
	5: "fully fed to grid",
	6: "time of use (LUNA2000)",
}
