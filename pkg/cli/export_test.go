package cli

var PrintDashboard = printDashboard
